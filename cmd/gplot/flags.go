package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/mastercactapus/gplot/bridge"
	"github.com/mastercactapus/gplot/config"
	"github.com/mastercactapus/gplot/job"
	"github.com/mastercactapus/gplot/machine"
)

type plotterFlags struct {
	simulate bool
	port     string
	baud     int
	bridge   string
	timeout  time.Duration

	base machine.Options
}

func (pf *plotterFlags) register(fs *flag.FlagSet, prof config.Profile) {
	fs.BoolVar(&pf.simulate, "simulate", prof.Simulate, "Simulate the plotter instead of opening a connection.")
	fs.StringVar(&pf.port, "port", prof.Port, "Serial port the plotter is connected to.")
	fs.IntVar(&pf.baud, "baud", prof.Baud, "Baud rate of the plotter connection.")
	fs.StringVar(&pf.bridge, "bridge", prof.Bridge, "Websocket URL of a gplot bridge to use instead of a local port.")
	fs.DurationVar(&pf.timeout, "timeout", prof.Timeout, "How long to wait for each plotter reply (0 waits forever).")
	pf.base = prof.Session()
}

// open connects to the plotter, returning nil if none was configured.
func (pf *plotterFlags) open() (io.ReadWriteCloser, error) {
	switch {
	case pf.simulate:
		return machine.NewSimulator(), nil
	case pf.bridge != "":
		return bridge.Dial(pf.bridge)
	case pf.port != "":
		if pf.baud == 0 {
			return nil, fmt.Errorf("-baud is required with -port")
		}
		return machine.Open(pf.port, pf.baud)
	}
	return nil, nil
}

func (pf *plotterFlags) session(l *log.Logger) machine.Options {
	opt := pf.base
	opt.Timeout = pf.timeout
	opt.Log = l
	return opt
}

type convertFlags struct {
	size      string
	dilation  float64
	endHome   bool
	output    string
	binOutput string
}

func (cf *convertFlags) register(fs *flag.FlagSet, prof config.Profile) {
	fs.StringVar(&cf.size, "size", prof.Size, "Size of the drawing area in steps, as WIDTHxHEIGHT.")
	fs.Float64Var(&cf.dilation, "dilation", prof.Dilation, "Extra factor applied after fitting the drawing to -size.")
	fs.BoolVar(&cf.endHome, "end-home", prof.EndHome, "Return to the origin when done instead of lifting the pen in place.")
	fs.StringVar(&cf.output, "o", "", "File in which to save the normalized G-code.")
	fs.StringVar(&cf.binOutput, "b", "", "File in which to save the encoded command stream.")
}

func (cf *convertFlags) config(l *log.Logger) (job.Config, error) {
	cfg := job.Config{Dilation: cf.dilation, EndHome: cf.endHome, Log: l}
	var err error
	cfg.Width, cfg.Height, err = config.ParseSize(cf.size)
	if err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (cf *convertFlags) save(res *job.Result) error {
	if cf.output != "" {
		f, err := os.Create(cf.output)
		if err != nil {
			return err
		}
		err = res.WriteGcode(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}
	if cf.binOutput != "" {
		return os.WriteFile(cf.binOutput, res.Binary, 0644)
	}
	return nil
}

func readInput(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(name)
}
