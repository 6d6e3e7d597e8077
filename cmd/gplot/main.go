package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/mastercactapus/gplot/config"
	"github.com/mastercactapus/gplot/internal/diaglog"
	"github.com/mastercactapus/gplot/machine"
)

const usageText = `Usage: gplot [-config FILE] [-log FILE] COMMAND [flags]

Commands:
  gcode    convert a G-code document and send it to the plotter
  text     draw text using a directory of glyph drawings
  binary   send an already encoded command stream
  serve    run the HTTP API
  bridge   expose a local plotter over a websocket

Run 'gplot COMMAND -h' for the flags of a command.
`

type app struct {
	prof config.Profile
	diag *log.Logger
}

func main() {
	log.SetFlags(log.Lshortfile)

	configFile := flag.String("config", "", "YAML plotter profile providing flag defaults.")
	logFile := flag.String("log", "", "File in which to save logs, comments and warnings.")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usageText) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	err := run(*configFile, *logFile, flag.Arg(0), flag.Args()[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(2)
	}
	if err != nil {
		log.Println("ERROR:", err)
		os.Exit(1)
	}
}

func run(configFile, logFile, cmd string, args []string) error {
	a := &app{prof: config.Default(), diag: diaglog.Discard}
	if configFile != "" {
		p, err := config.Load(configFile)
		if err != nil {
			return err
		}
		a.prof = *p
	}
	if logFile != "" {
		f, err := os.Create(logFile)
		if err != nil {
			return err
		}
		defer f.Close()
		a.diag = log.New(f, "", 0)
	}

	switch cmd {
	case "gcode":
		return a.gcode(args)
	case "text":
		return a.text(args)
	case "binary":
		return a.binary(args)
	case "serve":
		return a.serve(args)
	case "bridge":
		return a.bridge(args)
	}
	return fmt.Errorf("unknown command '%s', expected one of: gcode, text, binary, serve, bridge", cmd)
}

// interruptContext is cancelled on the first interrupt so the plotter can
// finish cleanly. A second interrupt exits immediately.
func interruptContext() (context.Context, func()) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, os.Interrupt)
	go func() {
		if _, ok := <-ch; !ok {
			return
		}
		log.Println("Interrupted, stopping after the current command (interrupt again to exit now)")
		cancel()
		if _, ok := <-ch; ok {
			os.Exit(130)
		}
	}()
	return ctx, func() {
		signal.Stop(ch)
		close(ch)
		cancel()
	}
}

func (a *app) send(data []byte, pf *plotterFlags) error {
	rw, err := pf.open()
	if err != nil {
		return err
	}
	if rw == nil {
		a.diag.Println("[info] No plotter given, nothing sent")
		return nil
	}

	ctx, stop := interruptContext()
	defer stop()

	s := machine.NewSession(rw, pf.session(a.diag))
	defer s.Close()

	err = s.Send(ctx, data)
	if errors.Is(err, context.Canceled) {
		a.diag.Println("[info] Sending interrupted by user")
		return nil
	}
	return err
}
