package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"github.com/mastercactapus/gplot/bridge"
	"github.com/mastercactapus/gplot/gcode"
	"github.com/mastercactapus/gplot/glyph"
	"github.com/mastercactapus/gplot/job"
	"github.com/mastercactapus/gplot/wire"
)

func (a *app) gcode(args []string) error {
	fs := flag.NewFlagSet("gcode", flag.ContinueOnError)
	input := fs.String("i", "-", "G-code file to draw.")
	mode := fs.String("mode", a.prof.Mode, "Pen detection: auto, g, feed:VALUE or speed:VALUE (visible below VALUE).")
	var cf convertFlags
	var pf plotterFlags
	cf.register(fs, a.prof)
	pf.register(fs, a.prof)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := cf.config(a.diag)
	if err != nil {
		return err
	}
	cfg.Mode, err = gcode.ParseMode(*mode)
	if err != nil {
		return err
	}

	data, err := readInput(*input)
	if err != nil {
		return err
	}
	res, err := job.Build(string(data), cfg)
	if err != nil {
		return err
	}
	if err = cf.save(res); err != nil {
		return err
	}
	return a.send(res.Binary, &pf)
}

func (a *app) text(args []string) error {
	fs := flag.NewFlagSet("text", flag.ContinueOnError)
	input := fs.String("i", "-", "File from which to read the characters to print.")
	dir := fs.String("font-dir", a.prof.Font.Dir, "Directory containing one G-code file per character.")
	opt := glyph.Options{}
	fs.Float64Var(&opt.LineLength, "line-length", a.prof.Font.LineLength, "Maximum length of a line.")
	fs.Float64Var(&opt.LineSpacing, "line-spacing", a.prof.Font.LineSpacing, "Distance between two subsequent lines.")
	fs.Float64Var(&opt.Padding, "padding", a.prof.Font.Padding, "Empty space between characters.")
	var cf convertFlags
	var pf plotterFlags
	cf.register(fs, a.prof)
	pf.register(fs, a.prof)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := cf.config(a.diag)
	if err != nil {
		return err
	}
	data, err := readInput(*input)
	if err != nil {
		return err
	}

	raw, err := glyph.Layout(glyph.NewDirFont(*dir, a.diag), string(data), opt)
	if err != nil {
		return err
	}
	res, err := job.BuildPath(raw, cfg)
	if err != nil {
		return err
	}
	if err = cf.save(res); err != nil {
		return err
	}
	return a.send(res.Binary, &pf)
}

func (a *app) binary(args []string) error {
	fs := flag.NewFlagSet("binary", flag.ContinueOnError)
	input := fs.String("i", "", "Encoded command stream to send.")
	var pf plotterFlags
	pf.register(fs, a.prof)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return fmt.Errorf("-i is required")
	}

	data, err := readInput(*input)
	if err != nil {
		return err
	}
	if _, err = wire.Decode(data); err != nil {
		return fmt.Errorf("%s: %w", *input, err)
	}
	return a.send(data, &pf)
}

func (a *app) serve(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", ":9091", "Address to bind the HTTP server to.")
	dir := fs.String("dir", "./data", "Data directory to use.")
	var pf plotterFlags
	pf.register(fs, a.prof)
	if err := fs.Parse(args); err != nil {
		return err
	}

	api := newAPI(a.prof, *dir, &pf, a.diag)
	defer api.Close()

	log.Println("Listening on", *addr)
	return http.ListenAndServe(*addr, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")
		log.Printf("%s %s - %s", req.Method, req.URL.Path, req.RemoteAddr)
		api.ServeHTTP(w, req)
	}))
}

func (a *app) bridge(args []string) error {
	fs := flag.NewFlagSet("bridge", flag.ContinueOnError)
	addr := fs.String("addr", ":8989", "Address to bind the websocket server to.")
	var pf plotterFlags
	pf.register(fs, a.prof)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if pf.bridge != "" {
		return fmt.Errorf("-bridge cannot be used with the bridge command")
	}

	dev, err := pf.open()
	if err != nil {
		return err
	}
	if dev == nil {
		return fmt.Errorf("-port is required unless there is -simulate")
	}
	defer dev.Close()

	mux := http.NewServeMux()
	mux.Handle("/ws", bridge.NewHandler(dev, nil))
	log.Println("Bridge listening on", *addr+"/ws")
	return http.ListenAndServe(*addr, mux)
}
