package kfmt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixWriter(t *testing.T) {
	var (
		buf bytes.Buffer
		w   = PrefixWriter{Sink: &buf, Prefix: []byte("[test] ")}
	)

	w.Write([]byte("line one\nline two\n"))
	w.Write([]byte("split "))
	w.Write([]byte("line\n"))

	exp := "[test] line one\n[test] line two\n[test] split line\n"
	assert.Equal(t, exp, buf.String())
}

func TestPrefixWriterReportedLengthExcludesPrefix(t *testing.T) {
	var (
		buf bytes.Buffer
		w   = PrefixWriter{Sink: &buf, Prefix: []byte(">> ")}
	)

	n, err := w.Write([]byte("abc\n"))
	assert.NoError(t, err)
	assert.Equal(t, 4, n)
}
