package objectstore

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SHA-256 of "hello"
const helloHash = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

func TestVerifyingReaderPass(t *testing.T) {
	body := io.NopCloser(strings.NewReader("hello"))
	r := VerifyingReader(body, helloHash)

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	require.NoError(t, r.Close())
}

func TestVerifyingReaderMismatch(t *testing.T) {
	body := io.NopCloser(strings.NewReader("tampered"))
	r := VerifyingReader(body, helloHash)

	_, err := io.ReadAll(r)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrCodeHashMismatch))
}

func TestVerifyingReaderEmptyBody(t *testing.T) {
	body := io.NopCloser(strings.NewReader(""))
	r := VerifyingReader(body, helloHash)

	_, err := io.ReadAll(r)
	assert.True(t, IsCode(err, ErrCodeHashMismatch))
}
