// Package config loads plotter profiles: YAML files holding the defaults
// for a particular plotter, which command-line flags then override.
package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mastercactapus/gplot/gcode"
	"github.com/mastercactapus/gplot/glyph"
	"github.com/mastercactapus/gplot/job"
	"github.com/mastercactapus/gplot/machine"
)

// Profile describes one plotter and how documents are fitted to it.
type Profile struct {
	Size     string  `yaml:"size"`
	Dilation float64 `yaml:"dilation"`
	EndHome  bool    `yaml:"end_home"`
	Mode     string  `yaml:"mode"`

	Port     string        `yaml:"port"`
	Baud     int           `yaml:"baud"`
	Bridge   string        `yaml:"bridge"`
	Timeout  time.Duration `yaml:"timeout"`
	Terminal string        `yaml:"terminal"`
	Simulate bool          `yaml:"simulate"`

	Font FontProfile `yaml:"font"`
}

type FontProfile struct {
	Dir         string  `yaml:"dir"`
	LineLength  float64 `yaml:"line_length"`
	LineSpacing float64 `yaml:"line_spacing"`
	Padding     float64 `yaml:"padding"`
}

// Default returns the profile used when no file is given.
func Default() Profile {
	return Profile{
		Size:     "1.0x1.0",
		Dilation: 1,
		Mode:     "auto",
		Terminal: machine.DefaultTerminal,
		Font: FontProfile{
			Dir:         "./ascii_gcode",
			LineSpacing: glyph.DefaultOptions.LineSpacing,
			Padding:     glyph.DefaultOptions.Padding,
		},
	}
}

// Load reads a profile from path. Fields missing from the file keep
// their default values.
func Load(path string) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return p, nil
}

// Read parses a profile from r.
func Read(r io.Reader) (*Profile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if _, _, err := ParseSize(p.Size); err != nil {
		return nil, err
	}
	if _, err := gcode.ParseMode(p.Mode); err != nil {
		return nil, err
	}
	return &p, nil
}

// ParseSize parses a WIDTHxHEIGHT size such as "210x297".
func ParseSize(s string) (w, h float64, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("invalid size %q: expected WIDTHxHEIGHT", s)
	}
	w, err = strconv.ParseFloat(ws, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	h, err = strconv.ParseFloat(hs, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return w, h, nil
}

// Job returns the conversion settings described by p.
func (p *Profile) Job() (job.Config, error) {
	var cfg job.Config
	var err error
	cfg.Width, cfg.Height, err = ParseSize(p.Size)
	if err != nil {
		return cfg, err
	}
	cfg.Mode, err = gcode.ParseMode(p.Mode)
	if err != nil {
		return cfg, err
	}
	cfg.Dilation = p.Dilation
	cfg.EndHome = p.EndHome
	return cfg, cfg.Validate()
}

// Session returns the transfer settings described by p.
func (p *Profile) Session() machine.Options {
	return machine.Options{
		Timeout:  p.Timeout,
		Terminal: p.Terminal,
	}
}
