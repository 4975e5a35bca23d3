package server

import (
	"io"
	"net/http"
)

// flushWriter flushes after every write so that tail output reaches the
// client block by block instead of sitting in the response buffer.
type flushWriter struct {
	w       io.Writer
	flusher http.Flusher
}

func (f *flushWriter) Write(p []byte) (n int, err error) {
	n, err = f.w.Write(p)
	if f.flusher != nil {
		f.flusher.Flush()
	}
	return n, err
}

func newFlushWriter(w io.Writer) io.Writer {
	fw := &flushWriter{w: w}
	fw.flusher, _ = w.(http.Flusher)
	return fw
}
