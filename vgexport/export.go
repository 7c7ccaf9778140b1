// Package vgexport saves Vega and Vega-Lite chart specs as PNG or SVG.
//
// The spec itself is opaque: it is serialized and handed to the
// vega-embed library inside a headless browser, which owns all rendering
// (including inferring the embedding mode from $schema when no mode is
// given).
package vgexport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/multierr"

	"oss.terrastruct.com/util-go/xdefer"

	"github.com/vgraster/vgraster/lib/raster"
	"github.com/vgraster/vgraster/lib/writeout"
)

// Spec is a declarative chart description. It is never validated or
// interpreted here, only serialized and forwarded to the browser.
type Spec map[string]interface{}

const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

const (
	ModeVega     = "vega"
	ModeVegaLite = "vega-lite"
)

// Opts configure a single export call. The zero value resolves the
// format from the destination extension, lets the browser infer the
// mode, and uses raster.DefaultTimeout.
type Opts struct {
	// Format is "png" or "svg". When empty it is derived from the
	// destination path's extension.
	Format string
	// Mode is "vega" or "vega-lite". When empty, vega-embed infers it
	// from the spec's $schema, defaulting to vega.
	Mode string
	// Timeout bounds the in-browser render.
	Timeout time.Duration
}

// Validate checks Format and Mode without acquiring any resource.
// Format must already be resolved when there is no destination path to
// infer it from.
func (o Opts) Validate() error {
	format, err := ResolveFormat(o.Format, "")
	if err != nil {
		return err
	}
	_, err = renderOptions(format, o.Mode)
	return err
}

// ResolveFormat returns the export format given an explicit format and a
// destination path, preferring the explicit one. Only the exact formats
// png and svg are supported; "chart.PNG" does not resolve.
func ResolveFormat(format, path string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	switch format {
	case FormatPNG, FormatSVG:
		return format, nil
	}
	return "", &UnsupportedFormatError{Format: format}
}

// renderOptions builds the vega-embed options for a resolved format.
func renderOptions(format, mode string) (raster.Options, error) {
	opt := raster.Options{Renderer: "svg"}
	if format == FormatPNG {
		opt.Renderer = "canvas"
	}
	if mode != "" {
		if mode != ModeVega && mode != ModeVegaLite {
			return raster.Options{}, &InvalidModeError{Mode: mode}
		}
		opt.Mode = mode
	}
	return opt, nil
}

// Export renders spec and writes it to the file at path. The format is
// opts.Format or, when empty, the path's extension. A headless browser
// session is acquired for the duration of the call and torn down on
// every exit path.
func Export(ctx context.Context, spec Spec, path string, opts Opts) (err error) {
	defer xdefer.Errorf(&err, "failed to export %s", path)

	format, err := ResolveFormat(opts.Format, path)
	if err != nil {
		return err
	}
	opt, err := renderOptions(format, opts.Mode)
	if err != nil {
		return err
	}

	sess, err := raster.Init()
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, sess.Cleanup())
	}()

	out, err := render(ctx, sess.Page, spec, opt, format, opts.Timeout)
	if err != nil {
		return err
	}
	return writeout.Path(path, out)
}

// ExportTo is Export for an already-open binary sink. opts.Format is
// required since there is no path to infer it from.
func ExportTo(ctx context.Context, spec Spec, w io.Writer, opts Opts) (err error) {
	defer xdefer.Errorf(&err, "failed to export")

	format, err := ResolveFormat(opts.Format, "")
	if err != nil {
		return err
	}
	opt, err := renderOptions(format, opts.Mode)
	if err != nil {
		return err
	}

	sess, err := raster.Init()
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, sess.Cleanup())
	}()

	out, err := render(ctx, sess.Page, spec, opt, format, opts.Timeout)
	if err != nil {
		return err
	}
	return writeout.Sink(w, out)
}

// RenderSession renders spec within an existing browser session and
// returns the image bytes. Long-lived callers (watch mode) use this to
// amortize browser startup across exports.
func RenderSession(ctx context.Context, sess raster.Session, spec Spec, opts Opts) ([]byte, error) {
	format, err := ResolveFormat(opts.Format, "")
	if err != nil {
		return nil, err
	}
	opt, err := renderOptions(format, opts.Mode)
	if err != nil {
		return nil, err
	}
	return render(ctx, sess.Page, spec, opt, format, opts.Timeout)
}

// renderPage is the slice of playwright.Page the render sequence needs,
// so the temp-shell lifecycle is testable without a browser.
type renderPage interface {
	raster.Navigator
	raster.Evaluator
}

// render drives one export through an acquired session's page: write the
// HTML shell to a temp file, navigate to it, run the embed/convert
// handshake, decode. The temp file is removed before the caller releases
// the session, reversing acquisition order.
func render(ctx context.Context, pg renderPage, spec Spec, opt raster.Options, format string, timeout time.Duration) (_ []byte, err error) {
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize spec: %w", err)
	}

	shell, err := os.CreateTemp("", "vgraster-*.html")
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Combine(err, os.Remove(shell.Name()))
	}()
	if _, err = shell.Write(raster.ShellHTML()); err != nil {
		shell.Close()
		return nil, err
	}
	if err = shell.Close(); err != nil {
		return nil, err
	}

	if _, err = pg.Goto("file://" + filepath.ToSlash(shell.Name())); err != nil {
		return nil, fmt.Errorf("failed to load render shell: %w", err)
	}

	return raster.Render(ctx, pg, specJSON, opt, format, timeout)
}
