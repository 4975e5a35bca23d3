// Package tail provides support for outputting the last N lines of a ReadSeeker.
//
// The stream is read backwards in blocks sized from a guess of the average line
// length, so only the tail of the stream is ever loaded. Blocks are kept on a
// stack and written out in file order once enough line endings are found.
package tail

import (
	"fmt"
	"io"
	"log/slog"
)

// DefaultLineLengthGuess is the assumed average line length in bytes.
// Each load reads lines*DefaultLineLengthGuess bytes.
const DefaultLineLengthGuess = 20

const eol = '\n'

// Stats describes the loads performed by the last call to WriteTo.
type Stats struct {
	// Loads is the number of blocks read while searching for line endings.
	Loads int
	// BytesLoaded is the sum of the sizes of those blocks.
	BytesLoaded int64
}

type Option func(t *Tail)

// WithLineLengthGuess overrides DefaultLineLengthGuess. It only changes how
// much is read per load, never the output.
func WithLineLengthGuess(n int) Option {
	return func(t *Tail) {
		t.guess = n
	}
}

// WithMemoryLimit makes WriteTo fail with ErrOutOfMemory instead of holding
// more than limit bytes of the stream. Zero means no limit.
func WithMemoryLimit(limit int64) Option {
	return func(t *Tail) {
		t.memLimit = limit
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Tail) {
		t.logger = l
	}
}

// Tail prints the last N lines.
type Tail struct {
	r        io.ReadSeeker
	n        int
	guess    int
	memLimit int64
	logger   *slog.Logger

	stats Stats
}

// New returns an instance of Tail.
func New(r io.ReadSeeker, n int, opts ...Option) *Tail {
	t := &Tail{
		r:      r,
		n:      n,
		guess:  DefaultLineLengthGuess,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Stats returns the statistics of the last WriteTo.
func (t *Tail) Stats() Stats {
	return t.stats
}

// WriteTo writes the last N lines to the Writer. A missing line ending after
// the final line is added to the output. If the stream holds fewer than N
// lines, the whole stream is written.
func (t *Tail) WriteTo(w io.Writer) (int64, error) {
	t.stats = Stats{}
	if t.n <= 0 {
		return 0, fmt.Errorf("%w: number of lines must be positive, got %d", ErrInvalidArgument, t.n)
	}
	if t.guess <= 0 {
		return 0, fmt.Errorf("%w: line length guess must be positive, got %d", ErrInvalidArgument, t.guess)
	}

	rr := &rangeReader{r: t.r}
	size, err := rr.Len()
	if err != nil {
		return 0, err
	}
	if size == 0 {
		return 0, nil
	}

	last, err := rr.ReadRange(0, 1)
	if err != nil {
		return 0, err
	}
	want := t.n
	// An unterminated final line is printed, but does not end with a line
	// ending that the scan could count.
	missingEOL := last[0] != eol
	if missingEOL {
		want--
	}

	stack, start, err := t.load(rr, size, want)
	if err != nil {
		return 0, err
	}
	return t.drain(w, stack, start, missingEOL)
}

// load reads blocks backwards until more than want line endings are found or
// the whole stream is loaded. It returns the loaded blocks and the offset of
// the first byte to print within the top block.
func (t *Tail) load(rr *rangeReader, size int64, want int) (*blockStack, int, error) {
	var (
		stack  blockStack
		loaded int64
		found  int
		// index of the line ending preceding the first line to print
		stop = -1
	)
	// A load never needs to exceed the stream, which also keeps the product
	// from overflowing.
	loadSize := size
	if lines := int64(max(want, 1)); lines <= size/int64(t.guess) {
		loadSize = lines * int64(t.guess)
	}
	for found <= want && loaded < size {
		n := min(loadSize, size-loaded)
		if t.memLimit > 0 && loaded+n > t.memLimit {
			return nil, 0, fmt.Errorf("%w: loading %d more bytes would exceed the limit of %d bytes",
				ErrOutOfMemory, n, t.memLimit)
		}
		block, err := rr.ReadRange(loaded, n)
		if err != nil {
			return nil, 0, err
		}
		stop, found = scanBackward(block, found, want)
		stack.push(block)
		loaded += n

		t.stats.Loads++
		t.stats.BytesLoaded = loaded
		t.logger.Debug("Loaded block",
			slog.Int64("offset", size-loaded),
			slog.Int64("length", n),
			slog.Int("found", found),
		)
	}
	// stop stays -1 when the stream ran out first, so the top block is
	// printed from its start.
	return &stack, stop + 1, nil
}

// drain writes the stacked blocks in file order.
func (t *Tail) drain(w io.Writer, stack *blockStack, start int, missingEOL bool) (int64, error) {
	t.logger.Debug("Draining blocks", slog.Int("blocks", stack.len()), slog.Int("start", start))
	var written int64
	for first := true; ; first = false {
		block, ok := stack.pop()
		if !ok {
			break
		}
		if first {
			block = block[start:]
		}
		if len(block) == 0 {
			continue
		}
		n, err := w.Write(block)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("%w: write: %w", ErrIO, err)
		}
	}
	if missingEOL {
		n, err := w.Write([]byte{eol})
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("%w: write: %w", ErrIO, err)
		}
	}
	return written, nil
}
