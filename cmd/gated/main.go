package main

import (
	"flag"
	"os"

	"github.com/golang/glog"

	fx "github.com/robotalks/gate.go/pkg/framework"
	"github.com/robotalks/gate.go/pkg/l0/terminal"
	"github.com/robotalks/gate.go/pkg/l1/comm"
	"github.com/robotalks/gate.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/gate.go/pkg/l1/display"
	"github.com/robotalks/gate.go/pkg/l1/env"
	"github.com/robotalks/gate.go/pkg/l1/gpio"
	"github.com/robotalks/gate.go/pkg/l1/msgs"
)

var configFile string

func init() {
	env.SetupFlags()
	flag.StringVar(&configFile, "config", configFile, "YAML config file, overrides flags.")
}

func main() {
	flag.Parse()

	conf := env.NewConfig()
	if configFile != "" {
		var err error
		if conf, err = env.Load(configFile); err != nil {
			glog.Exitf("load config: %v", err)
		}
	}
	if err := conf.Validate(); err != nil {
		glog.Exit(err)
	}

	link, err := comm.Open(conf.Link)
	if err != nil {
		glog.Warningf("link %s: %v, retrying", conf.Link, err)
		link = comm.NewLink(conf.Link, nil, comm.Dial)
	}
	link.RetryInterval = conf.LinkRetry

	periph := terminal.NewPeripherals(conf.BufferCapacity)
	machine := terminal.NewMachine(periph, display.NewText().WithMirror(os.Stdout), link)
	machine.Timing = conf.Timing()

	loop := fx.NewLoop()
	loop.Interval = conf.TickPeriod
	loop.Add(machine)
	loop.AddRunnable(
		link.Receiver(periph),
		fx.NamedRun("timer", periph.Timer(conf.TickPeriod)),
	)
	if conf.GPIO.Line >= 0 {
		loop.AddRunnable(&gpio.Sensor{
			Chip:     conf.GPIO.Chip,
			Offset:   conf.GPIO.Line,
			Debounce: conf.GPIO.Debounce,
			Edge:     periph.SensorEdge,
		})
	}
	ref := conf.Ref()
	if conf.MQTTBrokerURL != "" {
		pub, err := mqtt.NewPublisher(conf.MQTTBrokerURL, ref, msgs.TerminalMeta{
			Description: conf.Description,
			Labels:      map[string]string{"link": conf.Link},
		})
		if err != nil {
			glog.Exitf("status publisher: %v", err)
		}
		machine.Observer = pub
		loop.Add(pub)
	}

	if err := machine.Start(); err != nil {
		glog.Warningf("start: %v", err)
	}
	glog.Infof("terminal %s ready", ref.Name())

	err = fx.NewRunner().HandleSignals().Go(loop).Wait()
	glog.Flush()
	if err != nil {
		glog.Exit(err)
	}
}
