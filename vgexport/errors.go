package vgexport

import "fmt"

// UnsupportedFormatError means the requested or inferred output format
// is not png or svg.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	if e.Format == "" {
		return `no output format: pass one explicitly or use a ".png" or ".svg" destination`
	}
	return fmt.Sprintf("unsupported format %q: only png and svg are supported", e.Format)
}

// InvalidModeError means the embedding mode is not vega or vega-lite.
type InvalidModeError struct {
	Mode string
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid mode %q: mode must be %q or %q", e.Mode, ModeVega, ModeVegaLite)
}
