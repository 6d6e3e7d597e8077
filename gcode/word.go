package gcode

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidWord is returned for tokens that are not a letter followed by a number.
var ErrInvalidWord = errors.New("invalid word")

type Word struct {
	W   byte
	Arg float64
}

// ParseWord splits a token into an upper-case tag and its numeric value.
//
// The value is read as an integer first, falling back to floating point.
// NaN and infinite values are rejected.
func ParseWord(token string) (Word, error) {
	if token == "" {
		return Word{}, ErrInvalidWord
	}
	rest := token[1:]
	var w Word
	if i, err := strconv.ParseInt(rest, 10, 64); err == nil {
		w.Arg = float64(i)
	} else {
		f, err := strconv.ParseFloat(rest, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return Word{}, ErrInvalidWord
		}
		w.Arg = f
	}
	w.W = token[0]
	if 'a' <= w.W && w.W <= 'z' {
		w.W -= 'a' - 'A'
	}
	return w, nil
}

func formatFloat(f float64, prec int) string {
	s := strconv.FormatFloat(f, 'f', prec, 64)
	if strings.ContainsRune(s, '.') {
		s = strings.TrimRight(s, "0")
	}
	return strings.TrimRight(s, ".")
}

func (w Word) String() string {
	return string(w.W) + formatFloat(w.Arg, 3)
}
