package gcode

import (
	"log"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mastercactapus/gplot/internal/diaglog"
)

const number = `([-+]?(?:[0-9]+\.?[0-9]*|\.[0-9]+))`

var (
	rxG     = regexp.MustCompile(`^[Gg]0*([01])(?:\.0*)?$`)
	rxFeed  = regexp.MustCompile(`^[Ff]` + number + `$`)
	rxSpeed = regexp.MustCompile(`^[Ss]` + number + `$`)
)

// Candidate is the evidence collected for one detection mode.
type Candidate struct {
	Mode Mode

	// Invisible and Visible count the tokens that would lift or lower the pen.
	Invisible int
	Visible   int
}

// Score rates how plausibly the candidate encodes the pen state.
//
// It favors balanced class sizes, a visible majority and more evidence.
// A candidate without any matching token scores -Inf.
func (c Candidate) Score() float64 {
	inv, vis := float64(c.Invisible), float64(c.Visible)
	n := inv + vis
	if n == 0 {
		return math.Inf(-1)
	}
	return (1 - math.Abs(inv-vis)/n) * (0.5 + 0.5*vis/n) * math.Log10(n)
}

// Candidates scans text and returns the G, feed and speed candidates, in
// that order.
func Candidates(text string) []Candidate {
	g := Candidate{Mode: UseG()}
	feed := map[float64]int{}
	speed := map[float64]int{}

	for _, tok := range strings.Fields(text) {
		if m := rxG.FindStringSubmatch(tok); m != nil {
			if m[1] == "0" {
				g.Invisible++
			} else {
				g.Visible++
			}
			continue
		}
		if m := rxFeed.FindStringSubmatch(tok); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				feed[v]++
			}
			continue
		}
		if m := rxSpeed.FindStringSubmatch(tok); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				speed[v]++
			}
		}
	}

	return []Candidate{
		g,
		thresholdCandidate(ModeFeed, feed),
		thresholdCandidate(ModeSpeed, speed),
	}
}

// thresholdCandidate splits values around their occurrence-weighted mean,
// which also becomes the threshold.
func thresholdCandidate(kind ModeKind, values map[float64]int) Candidate {
	c := Candidate{Mode: Mode{Kind: kind}}
	keys := distinct(values)
	var sum float64
	var n int
	for _, v := range keys {
		sum += v * float64(values[v])
		n += values[v]
	}
	if n == 0 {
		return c
	}
	mean := sum / float64(n)
	c.Mode.Threshold = mean
	for _, v := range keys {
		if v > mean {
			c.Invisible += values[v]
		} else {
			c.Visible += values[v]
		}
	}
	return c
}

// Detect infers the pen detection mode from the raw document text.
//
// Ties go to G, then feed, then speed. ErrNoMode is returned if the
// document has no G0/G1, feed or speed tokens at all.
func Detect(text string, l *log.Logger) (Mode, error) {
	l = diaglog.Or(l)
	candidates := Candidates(text)
	best := -1
	bestScore := math.Inf(-1)
	for i, c := range candidates {
		score := c.Score()
		l.Printf("detect %-5s invisible=%d visible=%d threshold=%g score=%g",
			c.Mode.Kind, c.Invisible, c.Visible, c.Mode.Threshold, score)
		if math.IsInf(score, -1) {
			continue
		}
		if best == -1 || score > bestScore {
			best, bestScore = i, score
		}
	}
	if best == -1 {
		l.Println("detect: no candidate mode")
		return Mode{}, ErrNoMode
	}
	mode := candidates[best].Mode
	l.Printf("detect: using %s", mode)
	return mode, nil
}

// distinct returns the sorted keys of values so sums do not depend on map order.
func distinct(values map[float64]int) []float64 {
	res := make([]float64, 0, len(values))
	for v := range values {
		res = append(res, v)
	}
	sort.Float64s(res)
	return res
}
