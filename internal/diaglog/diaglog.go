// Package diaglog holds the convention for optional diagnostic loggers:
// a nil *log.Logger discards everything.
package diaglog

import (
	"io"
	"log"
)

// Discard drops every message.
var Discard = log.New(io.Discard, "", 0)

// Or returns l, or Discard if l is nil.
func Or(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard
	}
	return l
}
