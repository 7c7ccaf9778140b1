// Package writeout writes rendered bytes to a destination that is either
// a filesystem path or an already-open binary sink.
package writeout

import (
	"fmt"
	"io"
	"os"
)

// Path writes p to fp, truncating any existing file. The file is only
// touched once the full payload is in hand, so a failed export never
// leaves a half-written destination.
func Path(fp string, p []byte) error {
	return os.WriteFile(fp, p, 0644)
}

// Sink writes all of p to w, erroring on short writes.
func Sink(w io.Writer, p []byte) error {
	n, err := w.Write(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return fmt.Errorf("short write: %d of %d bytes", n, len(p))
	}
	return nil
}
