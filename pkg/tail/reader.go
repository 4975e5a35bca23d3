package tail

import (
	"fmt"
	"io"
)

// rangeReader reads byte ranges addressed from the end of the stream.
type rangeReader struct {
	r    io.ReadSeeker
	size int64
}

// Len seeks to the end of the stream and remembers its length.
func (rr *rangeReader) Len() (int64, error) {
	size, err := rr.r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fmt.Errorf("%w: seek to end: %w", ErrIO, err)
	}
	rr.size = size
	return size, nil
}

// ReadRange reads exactly length bytes, the last of which lies end bytes
// before the end of the stream.
func (rr *rangeReader) ReadRange(end, length int64) ([]byte, error) {
	off := rr.size - end - length
	if end < 0 || length < 0 || off < 0 {
		return nil, fmt.Errorf("%w: range of %d bytes ending %d bytes before EOF exceeds stream of %d bytes",
			ErrInvalidArgument, length, end, rr.size)
	}
	if _, err := rr.r.Seek(off, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: seek to %d: %w", ErrIO, off, err)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(rr.r, buf); err != nil {
		return nil, fmt.Errorf("%w: read %d bytes at %d: %w", ErrIO, length, off, err)
	}
	return buf, nil
}
