package diaglog

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOr(t *testing.T) {
	assert.Same(t, Discard, Or(nil))

	var buf bytes.Buffer
	l := log.New(&buf, "", 0)
	assert.Same(t, l, Or(l))

	Or(nil).Println("dropped")
	Or(l).Println("kept")
	assert.Equal(t, "kept\n", buf.String())
}
