package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	fx "github.com/robotalks/fmtx/pkg/framework"
	"github.com/robotalks/fmtx/pkg/l1/comm/mqtt"
	"github.com/robotalks/fmtx/pkg/l1/msgs"
)

var (
	mqttURL = "mqtt://localhost:1883/fmtx/"
)

func init() {
	if val := os.Getenv("FMTX_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

// describe formats a packet received on topic for display.
func describe(topic string, payload []byte) string {
	_, leaf, _ := mqtt.ParseDeviceTopic(topic)
	if len(payload) == 0 && (leaf == mqtt.LeafMeta || leaf == mqtt.LeafStatus) {
		return topic + ": cleared"
	}
	if leaf == mqtt.LeafMeta {
		return fmt.Sprintf("%s: %s", topic, string(payload))
	}
	typed, err := msgs.DecodeTyped(payload)
	if err != nil {
		return fmt.Sprintf("%s: bad message: %v", topic, err)
	}
	msg, err := typed.Decode()
	if err != nil {
		return fmt.Sprintf("%s: decode error: (type_id=%x) %v", topic, typed.TypeId, err)
	}
	return fmt.Sprintf("%s: #%d [%s]", topic, typed.Sequence, msgs.Describe(msg))
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		log.Println(describe(topic, payload))
	}))
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	err = fx.NewRunner().HandleSignals().Go(fx.RunFunc(func(ctx context.Context) error {
		return fx.RunWithContextCloser(ctx, q, func() error {
			<-ctx.Done()
			return nil
		})
	})).Wait()
	if err != nil {
		log.Fatalln(err)
	}
}
