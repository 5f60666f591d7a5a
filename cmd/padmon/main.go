package main

import (
	"flag"
	"log"
	"os"
	"reflect"

	"github.com/robotalks/macropad.go/pkg/telemetry"
)

var (
	mqttURL = "mqtt://localhost:1883/macropad/"
	device  = "+"
)

func init() {
	if val := os.Getenv("MACROPAD_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&device, "id", device, "Device ID to monitor, + for all.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := telemetry.NewQueueFromURL(mqttURL, "")
	if err != nil {
		log.Fatalln(err)
	}
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}

	q.Sub(device+"/events/#", func(topic string, payload []byte) {
		ev, err := telemetry.Decode(payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		log.Printf("%s: [%s] %s", topic,
			reflect.Indirect(reflect.ValueOf(ev)).Type().Name(), ev.String())
	})
	<-(chan struct{})(nil)
}
