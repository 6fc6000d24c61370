package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainText(t *testing.T) {
	t.Parallel()

	got, err := PlainText{}.Extract(context.Background(), strings.NewReader("  Python,\n\tSQL  and   pandas \n"))
	require.NoError(t, err)
	assert.Equal(t, "Python, SQL and pandas", got)

	empty, err := PlainText{}.Extract(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestHTML(t *testing.T) {
	t.Parallel()

	doc := `<html><head><title>CV</title><style>.x{}</style></head>
<body>
  <h1>Jane</h1>
  <script>var python = 1;</script>
  <ul><li>Python</li><li>SQL</li></ul>
  <p>Experienced with <b>docker</b>.</p>
</body></html>`

	got, err := HTML{}.Extract(context.Background(), strings.NewReader(doc))
	require.NoError(t, err)

	for _, want := range []string{"Jane", "Python", "SQL", "docker"} {
		assert.Contains(t, got, want)
	}
	assert.NotContains(t, got, "PythonSQL")
	assert.NotContains(t, got, "var python")
	assert.NotContains(t, got, "CV")
}

func TestExtractCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := HTML{}.Extract(ctx, strings.NewReader("<p>x</p>"))
	require.ErrorIs(t, err, context.Canceled)
}

func TestForPath(t *testing.T) {
	t.Parallel()

	p, err := ForPath("resume.TXT")
	require.NoError(t, err)
	assert.IsType(t, PlainText{}, p)

	p, err = ForPath("/tmp/cv.html")
	require.NoError(t, err)
	assert.IsType(t, HTML{}, p)

	_, err = ForPath("cv.pdf")
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = ForPath("cv.docx")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtractFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "resume.htm")
	require.NoError(t, os.WriteFile(path, []byte("<body><p>Go</p><p>Kubernetes</p></body>"), 0o600))

	got, err := ExtractFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Go Kubernetes", got)

	_, err = ExtractFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}
