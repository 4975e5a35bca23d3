package utils

import (
	"compress/gzip"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func PollUntilTimeout(t *testing.T, timeout time.Duration, f func() bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	ticker := time.NewTicker(time.Millisecond * 100)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if f() {
				return
			}
		case <-timer.C:
			t.Fatal("Timeout")
		}
	}
}

func WriteFile(t *testing.T, path, content string) {
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// WriteGzipFile writes content gzip-compressed to path.
func WriteGzipFile(t *testing.T, path, content string) {
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	gw := gzip.NewWriter(f)
	_, err = gw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
}
