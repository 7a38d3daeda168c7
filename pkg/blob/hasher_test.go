package blob

import (
	"bytes"
	"crypto/rand"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndHashKnownVector(t *testing.T) {
	var dst bytes.Buffer

	hash, size, err := WriteAndHash(&dst, strings.NewReader("hello"))
	require.NoError(t, err)

	assert.Equal(t, helloHash, hash)
	assert.Equal(t, int64(5), size)
	assert.Equal(t, "hello", dst.String())
}

func TestWriteAndHashEmpty(t *testing.T) {
	var dst bytes.Buffer

	hash, size, err := WriteAndHash(&dst, strings.NewReader(""))
	require.NoError(t, err)

	// SHA-256 of the empty string
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", hash)
	assert.Equal(t, int64(0), size)
}

func TestWriteAndHashLargePayload(t *testing.T) {
	// Larger than the copy buffer to exercise multiple read cycles
	payload := make([]byte, 1<<20+17)
	_, err := rand.Read(payload)
	require.NoError(t, err)

	var dst bytes.Buffer
	hash, size, err := WriteAndHash(&dst, bytes.NewReader(payload))
	require.NoError(t, err)

	assert.Equal(t, int64(len(payload)), size)
	assert.Len(t, hash, 64)
	assert.True(t, bytes.Equal(payload, dst.Bytes()))
}

type failingReader struct{ after int }

func (f *failingReader) Read(p []byte) (int, error) {
	if f.after <= 0 {
		return 0, io.ErrUnexpectedEOF
	}
	n := f.after
	if n > len(p) {
		n = len(p)
	}
	f.after -= n
	return n, nil
}

func TestWriteAndHashSourceError(t *testing.T) {
	var dst bytes.Buffer
	_, _, err := WriteAndHash(&dst, &failingReader{after: 100})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
