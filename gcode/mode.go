package gcode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoMode is returned when no pen detection mode is configured or detected.
var ErrNoMode = errors.New("no pen detection mode (G, feed or speed) available")

// ModeKind selects which G-code field encodes the pen state.
type ModeKind int

const (
	ModeNone ModeKind = iota
	ModeG
	ModeFeed
	ModeSpeed
)

func (k ModeKind) String() string {
	switch k {
	case ModeG:
		return "g"
	case ModeFeed:
		return "feed"
	case ModeSpeed:
		return "speed"
	}
	return "none"
}

// Mode is the pen detection configuration.
//
// For ModeFeed and ModeSpeed, values strictly below Threshold mean pen down.
type Mode struct {
	Kind      ModeKind
	Threshold float64
}

// UseG treats G0 as pen up and G1 as pen down.
func UseG() Mode { return Mode{Kind: ModeG} }

// UseFeed treats feed rates below threshold as pen down.
func UseFeed(threshold float64) Mode { return Mode{Kind: ModeFeed, Threshold: threshold} }

// UseSpeed treats spindle speeds below threshold as pen down.
func UseSpeed(threshold float64) Mode { return Mode{Kind: ModeSpeed, Threshold: threshold} }

// Auto reports whether m asks for the mode to be detected from the input.
func (m Mode) Auto() bool { return m.Kind == ModeNone }

func (m Mode) Validate() error {
	switch m.Kind {
	case ModeG, ModeFeed, ModeSpeed:
		return nil
	}
	return ErrNoMode
}

func (m Mode) String() string {
	switch m.Kind {
	case ModeFeed, ModeSpeed:
		return m.Kind.String() + ":" + formatFloat(m.Threshold, 6)
	case ModeNone:
		return "auto"
	}
	return m.Kind.String()
}

// ParseMode parses "auto", "g", "feed:<threshold>" or "speed:<threshold>".
func ParseMode(s string) (Mode, error) {
	name, arg, hasArg := strings.Cut(strings.ToLower(strings.TrimSpace(s)), ":")
	switch name {
	case "", "auto":
		if hasArg {
			break
		}
		return Mode{}, nil
	case "g":
		if hasArg {
			break
		}
		return UseG(), nil
	case "feed", "speed":
		if !hasArg {
			return Mode{}, fmt.Errorf("mode %q: missing threshold", s)
		}
		t, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return Mode{}, fmt.Errorf("mode %q: invalid threshold: %w", s, err)
		}
		if name == "feed" {
			return UseFeed(t), nil
		}
		return UseSpeed(t), nil
	}
	return Mode{}, fmt.Errorf("unknown mode %q", s)
}
