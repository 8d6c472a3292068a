package kfmt

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingBufferReadWrite(t *testing.T) {
	var rb ringBuffer

	n, err := rb.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	out := make([]byte, 16)
	n, err = rb.Read(out)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out[:n]))

	_, err = rb.Read(out)
	assert.Equal(t, io.EOF, err, "read from drained buffer")
}

func TestRingBufferOverflowKeepsNewestData(t *testing.T) {
	var rb ringBuffer

	payload := make([]byte, ringBufferSize+10)
	for i := range payload {
		payload[i] = byte('a' + (i % 23))
	}

	_, err := rb.Write(payload)
	require.NoError(t, err)

	drained := make([]byte, 0, ringBufferSize)
	chunk := make([]byte, 512)
	for {
		n, err := rb.Read(chunk)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		drained = append(drained, chunk[:n]...)
	}

	require.Len(t, drained, ringBufferSize)
	assert.Equal(t, payload[len(payload)-ringBufferSize:], drained)
}

func TestRingBufferWrapAroundRead(t *testing.T) {
	var rb ringBuffer

	// Position the write index near the end of the buffer, drain, then
	// write across the wrap boundary.
	pad := make([]byte, ringBufferSize-3)
	rb.Write(pad)
	rb.Read(make([]byte, ringBufferSize))

	rb.Write([]byte("abcdef"))

	out := make([]byte, 16)
	var got []byte
	for {
		n, err := rb.Read(out)
		if err == io.EOF {
			break
		}
		got = append(got, out[:n]...)
	}

	assert.Equal(t, "abcdef", string(got))
}
