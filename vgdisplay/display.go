// Package vgdisplay maps Vega-Lite specs to notebook MIME bundles
// through a registry of pluggable renderers.
//
// The default renderer emits the spec under the Vega-Lite MIME type and
// relies on the notebook front end to render it; the png and svg
// renderers rasterize through vgexport for front ends without Vega
// support.
package vgdisplay

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/vgraster/vgraster/vgexport"
)

// MimeType is the MIME type for Vega-Lite 1.x specs in notebook rich
// display bundles.
const MimeType = "application/vnd.vegalite.v1+json"

// PlainText is the fallback representation front ends show when they
// recognize none of a bundle's MIME types.
const PlainText = "<VegaLite object>"

// A MimeBundle maps MIME types to displayable payloads, following the
// notebook rich-display protocol. Payloads are JSON-encodable: specs for
// the native type, strings for text and base64 image types.
type MimeBundle map[string]interface{}

// A Renderer turns a chart spec into a MIME bundle.
type Renderer func(spec vgexport.Spec) (MimeBundle, error)

// Renderers is the registry front ends and plugins register against.
// "default" is enabled at startup.
var Renderers = NewRegistry[Renderer]()

func init() {
	Renderers.Register("default", DefaultRenderer)
	Renderers.Register("json", JSONRenderer)
	Renderers.Register("png", PNGRenderer)
	Renderers.Register("svg", SVGRenderer)
	err := Renderers.Enable("default")
	if err != nil {
		panic(err)
	}
}

// Display renders spec with the enabled renderer.
func Display(spec vgexport.Spec) (MimeBundle, error) {
	r, err := Renderers.Active()
	if err != nil {
		return nil, err
	}
	return r(spec)
}

// DefaultRenderer emits the spec itself under the Vega-Lite MIME type.
func DefaultRenderer(spec vgexport.Spec) (MimeBundle, error) {
	return MimeBundle{
		MimeType:     spec,
		"text/plain": PlainText,
	}, nil
}

// JSONRenderer emits the spec as plain JSON.
func JSONRenderer(spec vgexport.Spec) (MimeBundle, error) {
	return MimeBundle{
		"application/json": spec,
		"text/plain":       PlainText,
	}, nil
}

// PNGRenderer rasterizes the spec headlessly and emits base64 PNG, for
// front ends without Vega support.
func PNGRenderer(spec vgexport.Spec) (MimeBundle, error) {
	out, err := export(spec, vgexport.FormatPNG)
	if err != nil {
		return nil, err
	}
	return MimeBundle{
		"image/png":  base64.StdEncoding.EncodeToString(out),
		"text/plain": PlainText,
	}, nil
}

// SVGRenderer renders the spec headlessly and emits SVG markup.
func SVGRenderer(spec vgexport.Spec) (MimeBundle, error) {
	out, err := export(spec, vgexport.FormatSVG)
	if err != nil {
		return nil, err
	}
	return MimeBundle{
		"image/svg+xml": string(out),
		"text/plain":    PlainText,
	}, nil
}

func export(spec vgexport.Spec, format string) ([]byte, error) {
	var buf bytes.Buffer
	err := vgexport.ExportTo(context.Background(), spec, &buf, vgexport.Opts{Format: format})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Marshal encodes a bundle for transport to a front end.
func (mb MimeBundle) Marshal() ([]byte, error) {
	b, err := json.Marshal(mb)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mime bundle: %w", err)
	}
	return b, nil
}
