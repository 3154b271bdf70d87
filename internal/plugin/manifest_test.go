package plugin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ManifestFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadManifestFull(t *testing.T) {
	path := writeManifest(t, `
plugin "logview" {
  version     = "1.2.0"
  description = "Structured log viewer."
  author      = "example"
  kind        = "native"
  entry       = "NewLogView"

  dependencies      = ["corehooks"]
  peer_dependencies = ["theme"]
  permissions       = ["fs.read"]
  hooks             = ["afterInit", "beforeDestroy"]

  metadata = {
    homepage = "https://example.com/logview"
  }

  config {
    max_lines = 500
    follow    = true
    title     = "logs"
  }
}
`)
	manifest, err := LoadManifest(path)
	require.NoError(t, err)

	assert.Equal(t, "logview", manifest.Name)
	assert.Equal(t, "1.2.0", manifest.Version)
	assert.Equal(t, KindNative, manifest.Kind)
	assert.Equal(t, "NewLogView", manifest.Entry)
	assert.Equal(t, []string{"corehooks"}, manifest.Dependencies)
	assert.Equal(t, []string{"theme"}, manifest.PeerDependencies)
	assert.True(t, manifest.DeclaresHook("afterInit"))
	assert.False(t, manifest.DeclaresHook("afterDestroy"))
	assert.Equal(t, "https://example.com/logview", manifest.Metadata["homepage"])

	assert.True(t, manifest.Config["max_lines"].RawEquals(cty.NumberIntVal(500)))
	assert.Equal(t, cty.True, manifest.Config["follow"])
	assert.Equal(t, cty.StringVal("logs"), manifest.Config["title"])
}

func TestLoadManifestRejectsUnknownKind(t *testing.T) {
	path := writeManifest(t, `
plugin "weird" {
  version = "1.0.0"
  kind    = "jit"
  entry   = "x"
}
`)
	_, err := LoadManifest(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kind")
}

func TestLoadManifestRequiresEntry(t *testing.T) {
	path := writeManifest(t, `
plugin "hollow" {
  version = "1.0.0"
  kind    = "native"
  entry   = ""
}
`)
	_, err := LoadManifest(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry")
}

func TestLoadManifestMissingFile(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), ManifestFile))
	assert.Error(t, err)
}

func TestPolicyCheck(t *testing.T) {
	p := Policy{Whitelist: []string{"a"}, Blacklist: []string{"b"}}
	assert.NoError(t, p.Check("a"))
	assert.ErrorIs(t, p.Check("b"), ErrPolicyViolation)
	assert.ErrorIs(t, p.Check("c"), ErrPolicyViolation)

	allowAll := Policy{}
	assert.NoError(t, allowAll.Check("anything"))
}
