package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLoadAndRender(t *testing.T) {
	base := t.TempDir()
	agentDir := filepath.Join(base, "agents")
	require.NoError(t, os.MkdirAll(agentDir, 0o755))

	tplPath := filepath.Join(agentDir, "market_analyst.tmpl")
	require.NoError(t, os.WriteFile(tplPath, []byte("Hello {{.Name}}"), 0o644))

	reg, err := NewRegistry(base)
	require.NoError(t, err)

	tmpl, err := reg.GetTemplate("agents/market_analyst")
	require.NoError(t, err)

	rendered, err := tmpl.Render(map[string]string{"Name": "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Alice", rendered)

	require.NoError(t, os.WriteFile(tplPath, []byte("Hi {{.Name}}"), 0o644))

	rendered, err = tmpl.Render(map[string]string{"Name": "Bob"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Bob", rendered, "loaded templates keep their initial content")
}

func TestRegistryLazyLoad(t *testing.T) {
	base := t.TempDir()
	reg, err := NewRegistry(base)
	require.NoError(t, err)

	path := filepath.Join(base, "reflection", "note.tmpl")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("Lesson for {{upper .Subject}}"), 0o644))

	rendered, err := reg.Render("reflection/note", map[string]string{"Subject": "acme"})
	require.NoError(t, err)
	assert.Equal(t, "Lesson for ACME", rendered)
}

func TestRegistryMissingTemplate(t *testing.T) {
	reg, err := NewRegistry(t.TempDir())
	require.NoError(t, err)

	_, err = reg.Render("agents/unknown", nil)
	assert.Error(t, err)
}
