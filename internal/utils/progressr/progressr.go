// Package progressr tracks how much of a download has been read.
package progressr

import (
	"io"
	"sync/atomic"
)

// Reader counts the bytes read through it. Progress may be polled from
// another goroutine while the body is being read.
type Reader struct {
	io.ReadCloser
	total   int64
	current atomic.Int64
}

// NewReader wraps rc; total is the expected size, or -1 when unknown.
func NewReader(rc io.ReadCloser, total int64) *Reader {
	return &Reader{
		ReadCloser: rc,
		total:      total,
	}
}

func (p *Reader) Read(b []byte) (int, error) {
	n, err := p.ReadCloser.Read(b)
	p.current.Add(int64(n))
	return n, err
}

func (p *Reader) BytesRead() int64 {
	return p.current.Load()
}

func (p *Reader) Total() int64 {
	return p.total
}

// Progress returns the read fraction in [0, 1], or 0 when the total is unknown.
func (p *Reader) Progress() float64 {
	if p.total <= 0 {
		return 0
	}
	return float64(p.current.Load()) / float64(p.total)
}
