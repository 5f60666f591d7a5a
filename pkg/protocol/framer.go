package protocol

import (
	"bytes"

	"github.com/golang/glog"
)

// DefaultMaxLine limits the length of a single line.
const DefaultMaxLine = 1 << 20

// Framer splits a byte stream into newline terminated lines. Bytes
// may arrive split at any position.
type Framer struct {
	MaxLine int

	buf      []byte
	overflow bool
}

// Feed appends data and returns the lines completed by it, without
// the terminating newline.
func (f *Framer) Feed(data []byte) (lines []string) {
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			f.append(data)
			return
		}
		f.append(data[:i])
		if f.overflow {
			glog.Warningf("protocol: dropped line longer than %d bytes", f.maxLine())
		} else {
			lines = append(lines, string(f.buf))
		}
		f.buf, f.overflow = f.buf[:0], false
		data = data[i+1:]
	}
	return
}

// Pending returns the number of buffered bytes of an incomplete line.
func (f *Framer) Pending() int {
	return len(f.buf)
}

// Reset drops the incomplete line.
func (f *Framer) Reset() {
	f.buf, f.overflow = f.buf[:0], false
}

func (f *Framer) append(data []byte) {
	if f.overflow {
		return
	}
	if len(f.buf)+len(data) > f.maxLine() {
		f.buf, f.overflow = f.buf[:0], true
		return
	}
	f.buf = append(f.buf, data...)
}

func (f *Framer) maxLine() int {
	if f.MaxLine > 0 {
		return f.MaxLine
	}
	return DefaultMaxLine
}
