package repositories

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsFile(t *testing.T) {
	d, err := LoadDefaultsFile("")
	require.NoError(t, err)
	assert.Equal(t, BuiltinDefaults(), d)

	path := filepath.Join(t.TempDir(), "defaults.yaml")
	yamlDoc := `
products:
  - id: "10"
    name: Blue Light Clip
    category: Accesorios
    price: 8000
    stock: 40
    imageUrl: https://example.com/clip.png
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o600))

	d, err = LoadDefaultsFile(path)
	require.NoError(t, err)
	require.Len(t, d.Products, 1)
	assert.Equal(t, "Blue Light Clip", d.Products[0].Name)
	assert.Equal(t, "https://example.com/clip.png", d.Products[0].ImageURL)
	assert.Equal(t, BuiltinDefaults().Config, d.Config)
	assert.Len(t, d.Customers, 3)

	_, err = LoadDefaultsFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("products: {"), 0o600))
	_, err = LoadDefaultsFile(bad)
	assert.Error(t, err)
}
