package vgdisplay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vgraster/vgraster/vgexport"
)

func barSpec() vgexport.Spec {
	return vgexport.Spec{
		"mark": "bar",
		"encoding": map[string]interface{}{
			"x": map[string]interface{}{"field": "a", "type": "nominal"},
		},
	}
}

func TestBuiltinRenderersRegistered(t *testing.T) {
	assert.Equal(t, []string{"default", "json", "png", "svg"}, Renderers.Names())
}

func TestDefaultRenderer(t *testing.T) {
	t.Parallel()

	bundle, err := DefaultRenderer(barSpec())
	require.NoError(t, err)
	assert.Equal(t, barSpec(), bundle[MimeType])
	assert.Equal(t, PlainText, bundle["text/plain"])
}

func TestJSONRenderer(t *testing.T) {
	t.Parallel()

	bundle, err := JSONRenderer(barSpec())
	require.NoError(t, err)
	assert.Equal(t, barSpec(), bundle["application/json"])
	assert.NotContains(t, bundle, MimeType)
}

func TestDisplayUsesEnabledRenderer(t *testing.T) {
	bundle, err := Display(barSpec())
	require.NoError(t, err)
	assert.Contains(t, bundle, MimeType)

	Renderers.Register("marker", func(spec vgexport.Spec) (MimeBundle, error) {
		return MimeBundle{"text/plain": "marker"}, nil
	})
	require.NoError(t, Renderers.Enable("marker"))
	defer func() {
		require.NoError(t, Renderers.Enable("default"))
	}()

	bundle, err = Display(barSpec())
	require.NoError(t, err)
	assert.Equal(t, "marker", bundle["text/plain"])
}

func TestMimeBundleMarshal(t *testing.T) {
	t.Parallel()

	bundle, err := DefaultRenderer(barSpec())
	require.NoError(t, err)
	b, err := bundle.Marshal()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Contains(t, decoded, MimeType)
	assert.Equal(t, PlainText, decoded["text/plain"])
}
