package writeout

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath(t *testing.T) {
	t.Parallel()

	fp := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, Path(fp, []byte("abc")))
	got, err := os.ReadFile(fp)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	// Truncates on rewrite.
	require.NoError(t, Path(fp, []byte("z")))
	got, err = os.ReadFile(fp)
	require.NoError(t, err)
	assert.Equal(t, []byte("z"), got)
}

func TestPathError(t *testing.T) {
	t.Parallel()
	err := Path(filepath.Join(t.TempDir(), "missing", "out.png"), []byte("abc"))
	assert.Error(t, err)
}

type shortWriter struct{}

func (shortWriter) Write(p []byte) (int, error) { return len(p) - 1, nil }

type failWriter struct{}

func (failWriter) Write(p []byte) (int, error) { return 0, errors.New("sink closed") }

func TestSink(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Sink(&buf, []byte("abc")))
	assert.Equal(t, "abc", buf.String())

	assert.ErrorContains(t, Sink(shortWriter{}, []byte("abc")), "short write")
	assert.ErrorContains(t, Sink(failWriter{}, []byte("abc")), "sink closed")
}
