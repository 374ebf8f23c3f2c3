// Package blake3 computes the hex digests reported for uploaded files.
package blake3

import (
	"encoding/hex"
	"io"

	"github.com/zeebo/blake3"
)

// Sum returns the hex-encoded BLAKE3 digest of data.
func Sum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Reader hashes a body as it is read.
type Reader struct {
	io.ReadCloser
	hash *blake3.Hasher
}

func NewReader(rc io.ReadCloser) *Reader {
	return &Reader{ReadCloser: rc, hash: blake3.New()}
}

func (r *Reader) Read(b []byte) (int, error) {
	n, err := r.ReadCloser.Read(b)
	r.hash.Write(b[:n])
	return n, err
}

// Sum returns the digest of the bytes read so far. It must not be called
// concurrently with Read.
func (r *Reader) Sum() string {
	return hex.EncodeToString(r.hash.Sum(nil))
}

// ReadAll reads data to the end and returns it with its digest.
func ReadAll(data io.Reader) ([]byte, string, error) {
	hash := blake3.New()
	content, err := io.ReadAll(io.TeeReader(data, hash))
	if err != nil {
		return nil, "", err
	}
	return content, hex.EncodeToString(hash.Sum(nil)), nil
}
