package mqtt

import (
	"context"
	"encoding/json"

	fx "github.com/robotalks/fmtx/pkg/framework"
	"github.com/robotalks/fmtx/pkg/l1"
	"github.com/robotalks/fmtx/pkg/l1/comm"
	"github.com/robotalks/fmtx/pkg/l1/msgs"
)

// Registrar implements l1.Registrar using MQTT.
// The device meta is retained on the meta topic while the device is
// connected. StatusChanged events are retained on the status topic so a
// connector joining later sees the current chip configuration.
type Registrar struct {
	Queue *Queue
	Info  l1.DeviceInfo

	metaJSON  []byte
	registrar comm.Registrar
}

// NewRegistrar creates a Registrar.
func NewRegistrar(brokerURL string, info l1.DeviceInfo) (*Registrar, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, err
	}
	b, err := ParseBrokerURL(brokerURL)
	if err != nil {
		return nil, err
	}
	if b.ClientID == "" {
		b.ClientID = "fmtx:" + info.Ref.Name()
	}
	opts := b.ClientOptions()
	opts.SetBinaryWill(b.TopicPrefix+DeviceTopic(info.Ref, LeafMeta), nil, QoSAtLeastOnce, true)
	r := &Registrar{
		Queue:    NewQueue(opts, b.TopicPrefix),
		Info:     info,
		metaJSON: meta,
	}
	r.Queue.QoS = b.QoS
	r.Queue.OnConnect = func(*Queue) { r.onConnected() }
	r.registrar.Init(NewPacketReadWriter(r.Queue).ForDevice(info.Ref))
	return r, nil
}

// SendEvent implements Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	if _, ok := msg.(*msgs.StatusChanged); ok {
		return r.retainStatus(msg)
	}
	return r.registrar.SendEvent(ctx, msg)
}

func (r *Registrar) retainStatus(msg fx.Message) error {
	typed, err := msgs.TypedFrom(msg)
	if err != nil {
		return err
	}
	pkt, err := typed.Encode()
	if err != nil {
		return err
	}
	token := r.Queue.Retain(DeviceTopic(r.Info.Ref, LeafStatus), pkt)
	token.Wait()
	return token.Error()
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.Add(&r.registrar)
	loop.AddRunnable(r)
}

// Run implements Runnable.
// Retained meta and status are cleared on shutdown.
func (r *Registrar) Run(ctx context.Context) error {
	r.Queue.Connect()
	<-ctx.Done()
	r.Queue.Retain(DeviceTopic(r.Info.Ref, LeafStatus), nil)
	r.Queue.Retain(DeviceTopic(r.Info.Ref, LeafMeta), nil).Wait()
	r.Queue.Close()
	return nil
}

func (r *Registrar) onConnected() {
	r.Queue.Retain(DeviceTopic(r.Info.Ref, LeafMeta), r.metaJSON)
}
