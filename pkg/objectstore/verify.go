package objectstore

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
)

// verifyingReader re-hashes content as it streams and fails the read at
// EOF when the digest does not match the recorded hash. Used behind the
// storage.verify_on_read flag.
type verifyingReader struct {
	src      io.ReadCloser
	hasher   hash.Hash
	wantHash string
	verified bool
}

// VerifyingReader wraps src so that the stream errors with
// ErrCodeHashMismatch at EOF if the content does not hash to wantHash.
func VerifyingReader(src io.ReadCloser, wantHash string) io.ReadCloser {
	return &verifyingReader{
		src:      src,
		hasher:   sha256.New(),
		wantHash: wantHash,
	}
}

func (v *verifyingReader) Read(p []byte) (int, error) {
	n, err := v.src.Read(p)
	if n > 0 {
		// sha256 writes never fail
		_, _ = v.hasher.Write(p[:n])
	}
	if err == io.EOF && !v.verified {
		v.verified = true
		got := hex.EncodeToString(v.hasher.Sum(nil))
		if got != v.wantHash {
			return n, NewHashMismatch(v.wantHash, got)
		}
	}
	return n, err
}

func (v *verifyingReader) Close() error {
	return v.src.Close()
}
