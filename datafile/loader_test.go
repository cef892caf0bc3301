package datafile

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/refdata/value"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "genres.yml", `
- id: 1
  name: Rock
  slug: rock
- id: 2
  name: Hip-Hop
  slug: hiphop
`)

	recs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.True(t, value.Equal(recs[0]["id"], value.Int(1)))
	assert.True(t, value.Equal(recs[0]["name"], value.String("Rock")))
	assert.True(t, value.Equal(recs[1]["name"], value.String("Hip-Hop")))
}

func TestLoad_YAMLTypedValues(t *testing.T) {
	path := writeFile(t, "albums.yml", `
- id: 1
  title: Play
  rating: 4.5
  released_on: 1999-09-14
  out_of_print: true
`)

	recs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	assert.True(t, value.Equal(recs[0]["rating"], value.Float(4.5)))
	assert.IsType(t, value.Date{}, recs[0]["released_on"])
	// Booleans are carried as strings; they infer to TEXT.
	assert.True(t, value.Equal(recs[0]["out_of_print"], value.String("true")))
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "genres.json", `[
		{"id": 1, "name": "Rock"},
		{"id": 2, "name": "Pop"}
	]`)

	recs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.True(t, value.Equal(recs[0]["id"], value.Int(1)))
	assert.True(t, value.Equal(recs[1]["name"], value.String("Pop")))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoad_BadShape(t *testing.T) {
	path := writeFile(t, "bad.yml", "name: Rock\nslug: rock\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadShape))

	path = writeFile(t, "bad_elem.yml", "- just a string\n")
	_, err = Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadShape))
}

func TestLoad_EmptySequence(t *testing.T) {
	// Acceptance of an empty sequence is the caller's decision;
	// the loader returns it as-is.
	path := writeFile(t, "empty.yml", "[]\n")
	recs, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, recs)

	path = writeFile(t, "blank.yml", "")
	recs, err = Load(path)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
