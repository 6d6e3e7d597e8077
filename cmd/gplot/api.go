package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	sse "github.com/alexandrevicenzi/go-sse"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mastercactapus/gplot/config"
	"github.com/mastercactapus/gplot/gcode"
	"github.com/mastercactapus/gplot/job"
	"github.com/mastercactapus/gplot/machine"
	"github.com/mastercactapus/gplot/wire"
)

const progressChannel = "/events/progress"

var errBusy = errors.New("plotter busy")

type opener interface {
	open() (io.ReadWriteCloser, error)
	session(*log.Logger) machine.Options
}

type api struct {
	http.Handler
	prof    config.Profile
	dataDir string
	plotter opener
	diag    *log.Logger
	sse     *sse.Server

	mx      sync.Mutex
	current *printJob
	jobs    map[string]progress
}

type printJob struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
}

type progress struct {
	Job       string `json:"job"`
	State     string `json:"state"`
	Sent      int    `json:"sent"`
	Total     int    `json:"total"`
	Cancelled bool   `json:"cancelled,omitempty"`
	Error     string `json:"error,omitempty"`
}

// preview is the msgpack form of a conversion.
type preview struct {
	Mode        string       `msgpack:"mode"`
	Factor      float64      `msgpack:"factor"`
	Translation [2]float64   `msgpack:"translation"`
	Path        [][3]float64 `msgpack:"path"`
	Binary      []byte       `msgpack:"binary"`
}

func newAPI(prof config.Profile, dir string, plotter opener, diag *log.Logger) *api {
	r := mux.NewRouter()

	a := &api{
		Handler: r,
		prof:    prof,
		dataDir: dir,
		plotter: plotter,
		diag:    diag,
		jobs:    make(map[string]progress),
		sse: sse.NewServer(&sse.Options{
			Logger: log.New(io.Discard, "", 0),
		}),
	}

	r.HandleFunc("/data/{name}", a.getFile).Methods("GET", "HEAD")
	r.HandleFunc("/data/{name}", a.putFile).Methods("PUT")
	r.HandleFunc("/data/{name}", a.deleteFile).Methods("DELETE")

	r.HandleFunc("/api/convert", a.convert).Methods("POST")
	r.HandleFunc("/api/print", a.print).Methods("POST")
	r.HandleFunc("/api/print/{id}", a.printStatus).Methods("GET")
	r.HandleFunc("/api/cancel", a.cancel).Methods("POST")

	r.PathPrefix("/events/").Handler(a.sse)

	return a
}

func (a *api) Close() {
	a.mx.Lock()
	j := a.current
	a.mx.Unlock()
	if j != nil {
		j.cancel()
		<-j.done
	}
	a.sse.Shutdown()
}

func safePath(base, name string) (bool, string) {
	if filepath.Separator != '/' && strings.ContainsRune(name, filepath.Separator) {
		log.Println("invalid path '" + name + "'")
		return false, ""
	}
	dir := string(base)
	if dir == "" {
		dir = "."
	}
	fullName := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+name)))
	return true, fullName
}

func (a *api) getFile(w http.ResponseWriter, req *http.Request) {
	ok, name := safePath(a.dataDir, mux.Vars(req)["name"])
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	f, err := os.Open(name)
	if os.IsNotExist(err) {
		http.NotFound(w, req)
		return
	}
	if err != nil {
		log.Printf("ERROR: open '%s': %+v", name, err)
		http.Error(w, err.Error(), 500)
		return
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil || st.IsDir() {
		http.NotFound(w, req)
		return
	}
	http.ServeContent(w, req, st.Name(), st.ModTime(), f)
}

func (a *api) putFile(w http.ResponseWriter, req *http.Request) {
	ok, name := safePath(a.dataDir, mux.Vars(req)["name"])
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	os.MkdirAll(filepath.Dir(name), 0755)
	f, err := os.Create(name)
	if err != nil {
		log.Printf("ERROR: create '%s': %+v", name, err)
		http.Error(w, err.Error(), 500)
		return
	}
	defer f.Close()
	_, err = io.Copy(f, req.Body)
	if err != nil {
		log.Printf("ERROR: write '%s': %+v", name, err)
		http.Error(w, err.Error(), 500)
		return
	}
}

func (a *api) deleteFile(w http.ResponseWriter, req *http.Request) {
	ok, name := safePath(a.dataDir, mux.Vars(req)["name"])
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	err := os.Remove(name)
	if os.IsNotExist(err) {
		http.NotFound(w, req)
		return
	}
	if err != nil {
		log.Printf("ERROR: delete '%s': %+v", name, err)
		http.Error(w, err.Error(), 500)
		return
	}
}

// document returns the G-code named by ?file=, or the request body.
func (a *api) document(req *http.Request) (string, error) {
	if file := req.URL.Query().Get("file"); file != "" {
		ok, name := safePath(a.dataDir, file)
		if !ok {
			return "", errors.New("invalid file name")
		}
		data, err := os.ReadFile(name)
		return string(data), err
	}
	data, err := io.ReadAll(req.Body)
	return string(data), err
}

// jobConfig applies query overrides to the profile settings.
func (a *api) jobConfig(req *http.Request) (job.Config, error) {
	q := req.URL.Query()
	cfg, err := a.prof.Job()
	if err != nil {
		return cfg, err
	}
	cfg.Log = a.diag

	if v := q.Get("size"); v != "" {
		cfg.Width, cfg.Height, err = config.ParseSize(v)
		if err != nil {
			return cfg, err
		}
	}
	if v := q.Get("dilation"); v != "" {
		cfg.Dilation, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, err
		}
	}
	if v := q.Get("mode"); v != "" {
		cfg.Mode, err = gcode.ParseMode(v)
		if err != nil {
			return cfg, err
		}
	}
	if v := q.Get("endHome"); v != "" {
		cfg.EndHome = v == "1" || v == "true"
	}
	return cfg, cfg.Validate()
}

func (a *api) build(w http.ResponseWriter, req *http.Request) *job.Result {
	cfg, err := a.jobConfig(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	doc, err := a.document(req)
	if os.IsNotExist(err) {
		http.NotFound(w, req)
		return nil
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	res, err := job.Build(doc, cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return nil
	}
	return res
}

func (a *api) convert(w http.ResponseWriter, req *http.Request) {
	res := a.build(w, req)
	if res == nil {
		return
	}

	var err error
	switch req.URL.Query().Get("format") {
	case "", "gcode":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		err = res.WriteGcode(w)
	case "binary":
		w.Header().Set("Content-Type", "application/octet-stream")
		_, err = w.Write(res.Binary)
	case "msgpack":
		p := preview{
			Mode:        res.Mode.String(),
			Factor:      res.Factor,
			Translation: [2]float64{res.Translation.X, res.Translation.Y},
			Binary:      res.Binary,
		}
		for _, s := range res.Path {
			p.Path = append(p.Path, [3]float64{float64(s.Pen), s.X, s.Y})
		}
		data, merr := msgpack.Marshal(p)
		if merr != nil {
			http.Error(w, merr.Error(), 500)
			return
		}
		w.Header().Set("Content-Type", "application/msgpack")
		_, err = w.Write(data)
	default:
		http.Error(w, "unknown format, expected gcode, binary or msgpack", http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Println("ERROR: write response:", err)
	}
}

func (a *api) print(w http.ResponseWriter, req *http.Request) {
	res := a.build(w, req)
	if res == nil {
		return
	}

	id, err := a.start(res.Binary)
	if errors.Is(err, errBusy) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		log.Println("ERROR: print:", err)
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"id": id})
}

func (a *api) printStatus(w http.ResponseWriter, req *http.Request) {
	a.mx.Lock()
	p, ok := a.jobs[mux.Vars(req)["id"]]
	a.mx.Unlock()
	if !ok {
		http.NotFound(w, req)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(p)
}

func (a *api) cancel(w http.ResponseWriter, req *http.Request) {
	a.mx.Lock()
	j := a.current
	a.mx.Unlock()
	if j == nil {
		http.Error(w, "nothing is printing", http.StatusNotFound)
		return
	}
	j.cancel()
	<-j.done
}

// start opens the plotter and streams data to it in the background.
func (a *api) start(data []byte) (string, error) {
	a.mx.Lock()
	defer a.mx.Unlock()
	if a.current != nil {
		return "", errBusy
	}

	rw, err := a.plotter.open()
	if err != nil {
		return "", err
	}
	if rw == nil {
		return "", errors.New("no plotter configured")
	}

	ctx, cancel := context.WithCancel(context.Background())
	j := &printJob{
		id:     uuid.New().String(),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	a.current = j
	a.jobs[j.id] = progress{
		Job:   j.id,
		State: machine.Idle.String(),
		Total: len(data) / wire.RecordSize,
	}

	go a.run(ctx, j, rw, data)
	return j.id, nil
}

func (a *api) run(ctx context.Context, j *printJob, rw io.ReadWriteCloser, data []byte) {
	defer close(j.done)
	defer j.cancel()

	opt := a.plotter.session(a.diag)
	opt.Progress = func(sent, total int) {
		a.publish(progress{Job: j.id, State: machine.Streaming.String(), Sent: sent, Total: total})
	}
	s := machine.NewSession(rw, opt)
	err := s.Send(ctx, data)
	s.Close()

	a.mx.Lock()
	p := a.jobs[j.id]
	a.current = nil
	a.mx.Unlock()

	p.State = s.State().String()
	switch {
	case errors.Is(err, context.Canceled):
		p.Cancelled = true
	case err != nil:
		log.Println("ERROR: print:", err)
		p.Error = err.Error()
	}
	a.publish(p)
}

func (a *api) publish(p progress) {
	a.mx.Lock()
	a.jobs[p.Job] = p
	a.mx.Unlock()

	data, err := json.Marshal(p)
	if err != nil {
		log.Printf("ERROR: marshal json: %+v", err)
		return
	}
	a.sse.SendMessage(progressChannel, sse.SimpleMessage(string(data)))
}
