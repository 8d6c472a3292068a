package kfmt

import "io"

// PrefixWriter wraps an io.Writer and injects a prefix at the beginning of
// each output line. It is used by the driver probing code to tag each
// driver's init output.
type PrefixWriter struct {
	// Sink receives all writes.
	Sink io.Writer

	// Prefix is injected at the beginning of each line.
	Prefix []byte

	midLine bool
}

// Write writes p to the underlying sink, emitting the configured prefix
// whenever a new line begins. The injected prefix bytes are not counted in
// the returned length.
func (w *PrefixWriter) Write(p []byte) (int, error) {
	var written int

	for _, b := range p {
		if !w.midLine {
			if _, err := w.Sink.Write(w.Prefix); err != nil {
				return written, err
			}
			w.midLine = true
		}

		singleByte[0] = b
		n, err := w.Sink.Write(singleByte)
		written += n
		if err != nil {
			return written, err
		}

		if b == '\n' {
			w.midLine = false
		}
	}

	return written, nil
}
