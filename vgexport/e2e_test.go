package vgexport

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// End to end exports against a real headless Chromium. Gated since CI
// runners need the Playwright driver and network access to the CDN.
func e2eSpec(t *testing.T) Spec {
	t.Helper()
	if os.Getenv("VGRASTER_E2E") == "" {
		t.Skip("set VGRASTER_E2E=1 to run end to end export tests")
	}
	return Spec{
		"$schema": "https://vega.github.io/schema/vega-lite/v5.json",
		"data": map[string]interface{}{
			"values": []interface{}{
				map[string]interface{}{"a": "A", "b": 28},
				map[string]interface{}{"a": "B", "b": 55},
				map[string]interface{}{"a": "C", "b": 43},
			},
		},
		"mark": "bar",
		"encoding": map[string]interface{}{
			"x": map[string]interface{}{"field": "a", "type": "nominal"},
			"y": map[string]interface{}{"field": "b", "type": "quantitative"},
		},
	}
}

func TestExportPNGE2E(t *testing.T) {
	spec := e2eSpec(t)
	dst := filepath.Join(t.TempDir(), "chart.png")

	require.NoError(t, Export(context.Background(), spec, dst, Opts{}))

	out, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	cfg, err := png.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Greater(t, cfg.Width, 0)
	assert.Greater(t, cfg.Height, 0)
}

func TestExportSVGE2E(t *testing.T) {
	spec := e2eSpec(t)
	dst := filepath.Join(t.TempDir(), "chart.svg")

	require.NoError(t, Export(context.Background(), spec, dst, Opts{Mode: ModeVegaLite}))

	out, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(bytes.TrimSpace(out), []byte("<svg")))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find("svg").Length())
}

func TestExportDeterministicE2E(t *testing.T) {
	spec := e2eSpec(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.svg")
	b := filepath.Join(dir, "b.svg")

	require.NoError(t, Export(context.Background(), spec, a, Opts{}))
	require.NoError(t, Export(context.Background(), spec, b, Opts{}))

	aout, err := os.ReadFile(a)
	require.NoError(t, err)
	bout, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, aout, bout)
}
