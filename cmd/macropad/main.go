package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/macropad.go/pkg/framework"
	"github.com/robotalks/macropad.go/pkg/pad"
)

var configFile string

func init() {
	pad.SetupFlags()
	flag.StringVar(&configFile, "c", configFile, "YAML settings file")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf, err := pad.LoadConfig(configFile)
	if err != nil {
		glog.Exitf("config: %v", err)
	}
	hw, err := newHardware(conf)
	if err != nil {
		glog.Exitf("hardware: %v", err)
	}
	defer func() {
		if err := hw.Close(); err != nil {
			glog.Warningf("close: %v", err)
		}
	}()

	loop := framework.NewLoop()
	loop.Interval = conf.Interval
	loop.Add(pad.New(conf.NewStore(), hw.Hardware))
	loop.AddRunnable(hw.Runnables...)
	loop.RunOrFail(framework.NewRunner().HandleSignals().Context)
}
