package variation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadCatalogPreservesOrderAndBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")

	entries := []map[string]any{
		{
			"description": "one",
			"header_name": "Transfer-Encoding",
			"header_value": "chunked",
			"extra_headers": []map[string]string{
				{"name": "X-Test", "value": "1"},
			},
		},
		{
			"description": "two",
			"header_name": "transfer-encoding",
			"header_value": " chunked",
		},
	}
	data, err := json.Marshal(entries)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	got, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.Equal(t, "one", got[0].Description)
	require.Equal(t, "Transfer-Encoding", got[0].HeaderName)
	require.Equal(t, "chunked", got[0].HeaderValue)
	require.Len(t, got[0].Extras(), 1)
	require.Equal(t, "X-Test", got[0].Extras()[0].NameString())

	require.Equal(t, "transfer-encoding", got[1].HeaderName)
	require.Equal(t, " chunked", got[1].HeaderValue)
}

func TestLoadCatalogMissingFileErrors(t *testing.T) {
	_, err := LoadCatalog("/nonexistent/path/catalog.json")
	require.Error(t, err)
}

func TestDefaultTEVariationsNonEmptyAndOrdered(t *testing.T) {
	vs := DefaultTEVariations()
	require.NotEmpty(t, vs)
	require.Equal(t, "chunked", vs[0].HeaderValue)
	require.Equal(t, " chunked", vs[1].HeaderValue)
}

func TestFieldPreservesExactBytes(t *testing.T) {
	v := HeaderVariation{HeaderName: "Transfer-Encoding", HeaderValue: "chunked\x00"}
	f := v.Field()
	require.Equal(t, "chunked\x00", f.ValueString())
}
