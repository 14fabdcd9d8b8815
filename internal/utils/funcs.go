package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

func IsIn(s string, arr []string) bool {
	for _, x := range arr {
		if s == x {
			return true
		}
	}
	return false
}

// TemporaryFilename returns a fresh file name starting with prefix. A prefix
// without a directory is placed in $TMPDIR, or /tmp when TMPDIR is unset.
func TemporaryFilename(prefix string) string {
	if !strings.Contains(prefix, "/") {
		dir := os.Getenv("TMPDIR")
		if dir == "" {
			dir = "/tmp"
		}
		prefix = filepath.Join(dir, prefix)
	}
	return fmt.Sprintf("%s-%d-%d", prefix, os.Getpid(), time.Now().UnixNano())
}

const errUnknownChoiceFmt = "unknown %s %q; valid: %s"

// ValidateChoice checks that s is one of valid, naming what in the error.
func ValidateChoice(what, s string, valid []string) error {
	if !IsIn(s, valid) {
		return fmt.Errorf(errUnknownChoiceFmt, what, s, strings.Join(valid, ", "))
	}
	return nil
}
