package blob

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/pkg/bufpool"
)

// copyBufferSize is the streaming copy unit. One pooled buffer serves an
// upload of any size.
const copyBufferSize = 64 << 10

// WriteAndHash copies src to dst while computing the SHA-256 of the
// stream. Returns the lowercase hex digest and the byte count.
func WriteAndHash(dst io.Writer, src io.Reader) (string, int64, error) {
	buf := bufpool.Get(copyBufferSize)
	defer bufpool.Put(buf)

	hasher := sha256.New()
	size, err := io.CopyBuffer(io.MultiWriter(dst, hasher), src, buf)
	if err != nil {
		return "", size, err
	}

	return hex.EncodeToString(hasher.Sum(nil)), size, nil
}
