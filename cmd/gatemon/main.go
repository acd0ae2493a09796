package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/gate.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/gate.go/pkg/l1/msgs"
)

var (
	mqttURL = "mqtt://localhost:1883/"
)

func init() {
	if val := os.Getenv("GATE_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	q.Sub("+/+/"+mqtt.TopicMeta, func(topic string, payload []byte) {
		name := strings.TrimSuffix(topic, "/"+mqtt.TopicMeta)
		if len(payload) == 0 {
			log.Printf("%s: offline", name)
			return
		}
		meta, err := msgs.DecodeMeta(payload)
		if err != nil {
			log.Printf("%s: bad meta: %v", name, err)
			return
		}
		log.Printf("%s: online %s", name, meta.String())
	})
	q.Sub("+/+/"+mqtt.TopicState, func(topic string, payload []byte) {
		state, err := msgs.DecodeState(payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		log.Printf("%s: #%d %s -(%s)-> %s %q tick=%d", topic,
			state.Seq, state.From, state.Event, state.State, state.Payload, state.Tick)
	})
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}
