package normalizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMapping() map[string]string {
	return map[string]string{
		"Man Utd":           "Manchester United",
		"Man United":        "Manchester United",
		"Manchester United": "Manchester United",
		"Spurs":             "Tottenham Hotspur",
		"Tottenham":         "Tottenham Hotspur",
		"Real Madrid CF":    "Real Madrid",
	}
}

func TestStandardize(t *testing.T) {
	n := New(testMapping(), 0)

	t.Run("empty is Unknown", func(t *testing.T) {
		assert.Equal(t, "Unknown", n.Standardize(""))
	})

	t.Run("exact dictionary hit", func(t *testing.T) {
		assert.Equal(t, "Manchester United", n.Standardize("Man Utd"))
		assert.Equal(t, "Tottenham Hotspur", n.Standardize("Spurs"))
	})

	t.Run("fuzzy fallback above threshold", func(t *testing.T) {
		// Near-miss on a canonical value, not a dictionary key.
		assert.Equal(t, "Manchester United", n.Standardize("Manchester Unitedd"))
		assert.Equal(t, "Tottenham Hotspur", n.Standardize("Tottenham Hotspurs"))
	})

	t.Run("below threshold passes through", func(t *testing.T) {
		assert.Equal(t, "FC Barcelona", n.Standardize("FC Barcelona"))
		assert.Equal(t, "Arsenal", n.Standardize("Arsenal"))
	})

	t.Run("strict threshold keeps near-misses raw", func(t *testing.T) {
		// One trailing character off scores ~97 on the bigram scale.
		strict := New(testMapping(), 99)
		assert.Equal(t, "Manchester Unitedd", strict.Standardize("Manchester Unitedd"))
	})
}

func TestStandardizeEmptyDictionary(t *testing.T) {
	n := New(nil, 0)
	assert.Equal(t, "Unknown", n.Standardize(""))
	assert.Equal(t, "Anything", n.Standardize("Anything"))
}

func TestLoad(t *testing.T) {
	t.Run("missing path passes through", func(t *testing.T) {
		n, err := Load(filepath.Join(t.TempDir(), "absent.json"), 0)
		require.NoError(t, err)
		assert.Equal(t, "Man Utd", n.Standardize("Man Utd"))
	})

	t.Run("reads dictionary file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mapping.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"Man Utd":"Manchester United"}`), 0o644))
		n, err := Load(path, 0)
		require.NoError(t, err)
		assert.Equal(t, "Manchester United", n.Standardize("Man Utd"))
	})

	t.Run("malformed file errors", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mapping.json")
		require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o644))
		_, err := Load(path, 0)
		assert.Error(t, err)
	})
}
