package mqtt

import (
	"context"
	"encoding/json"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	fx "github.com/robotalks/fmtx/pkg/framework"
	"github.com/robotalks/fmtx/pkg/l1"
	"github.com/robotalks/fmtx/pkg/l1/comm"
)

// Connector implements l1.Connector using MQTT.
type Connector struct {
	DiscoverTimeout time.Duration

	options     *paho.ClientOptions
	topicPrefix string
	qos         byte
}

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// NewConnector creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	b, err := ParseBrokerURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return &Connector{
		DiscoverTimeout: DefaultDiscoverTimeout,
		options:         b.ClientOptions(),
		topicPrefix:     b.TopicPrefix,
		qos:             b.QoS,
	}, nil
}

// Discover implements Connector.
func (c *Connector) Discover(ctx context.Context) (res []l1.DeviceInfo, err error) {
	q := c.newQueue()
	q.Connect()
	defer q.Close()
	resCh := make(chan l1.DeviceInfo, 1)
	q.Sub(DevicePattern(LeafMeta), Handler(func(topic string, payload []byte) {
		info, ok := parseMeta(topic, payload)
		if !ok {
			return
		}
		select {
		case resCh <- info:
		case <-time.After(time.Second):
		}
	}))

	dur := c.DiscoverTimeout
	if dur == 0 {
		dur = DefaultDiscoverTimeout
	}
	timeout := time.After(dur)
	for {
		select {
		case info := <-resCh:
			res = append(res, info)
		case <-timeout:
			return
		case <-ctx.Done():
			err = ctx.Err()
			return
		}
	}
}

// parseMeta decodes a retained meta message. An empty payload is a device
// going offline.
func parseMeta(topic string, payload []byte) (info l1.DeviceInfo, ok bool) {
	ref, leaf, ok := ParseDeviceTopic(topic)
	if !ok || leaf != LeafMeta || len(payload) == 0 {
		return info, false
	}
	info.Ref = ref
	if err := json.Unmarshal(payload, &info.Meta); err != nil {
		glog.V(1).Infof("mqtt: bad meta of %s: %v", ref.Name(), err)
	}
	return info, true
}

// Connect implements Connector.
func (c *Connector) Connect(ctx context.Context, ref l1.DeviceRef) (l1.DeviceConn, error) {
	conn := &DeviceConn{
		Queue: c.newQueue(),
	}
	conn.Init(NewPacketReadWriter(conn.Queue).ForConnector(ref))
	token := conn.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}
	return conn, nil
}

func (c *Connector) newQueue() *Queue {
	q := NewQueue(c.options, c.topicPrefix)
	q.QoS = c.qos
	return q
}

// DeviceConn implements l1.DeviceConn using MQTT.
type DeviceConn struct {
	comm.DeviceConn
	Queue *Queue
}

// AddToLoop implements LoopAdder.
func (c *DeviceConn) AddToLoop(l *fx.Loop) {
	c.DeviceConn.AddToLoop(l)
	l.AddRunnable(fx.RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return c.Queue.Close()
	}))
}
