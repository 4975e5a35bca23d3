// Package utils provides some helper functions.
package utils

import (
	"fmt"
	"io"
	"os"
)

var exit = os.Exit

// CheckError prints err to stderr and exits with status 1 if err is non-nil.
func CheckError(err error) {
	if err != nil {
		printError(os.Stderr, err)
		exit(1)
	}
}

func printError(w io.Writer, err error) {
	_, _ = fmt.Fprintln(w, err)
}

// DirExists checks whether given path is an existing directory.
func DirExists(path string) bool {
	stat, err := os.Stat(path)
	if err != nil {
		return false
	}
	return stat.IsDir()
}
