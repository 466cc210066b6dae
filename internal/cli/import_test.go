package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImport_ThenQuery(t *testing.T) {
	uri := "sqlite://" + filepath.Join(t.TempDir(), "docs.db")
	yamlFile := writeFixture(t, "teams.yaml", "- name: core\n  size: 4\n- name: infra\n  size: 2\n")
	jsonFile := writeFixture(t, "more.json", `{"name": "web", "size": 7}`)

	stdout, _, err := execute(t, "import", "--uri", uri, "-c", "teams", yamlFile, jsonFile)
	require.NoError(t, err)
	assert.Equal(t, "Imported 3 document(s) from 2 file(s) into teams\n", stdout)

	stdout, _, err = execute(t, "uri="+uri, "query=select name from teams where size > 3", "padding=6")
	require.NoError(t, err)
	assert.Equal(t, "name  \ncore  \nweb   \n", stdout)
}

func TestImport_Drop(t *testing.T) {
	uri := "sqlite://" + filepath.Join(t.TempDir(), "docs.db")
	file := writeFixture(t, "c.ndjson", "{\"n\": 1}\n{\"n\": 2}\n")

	_, _, err := execute(t, "import", "--uri", uri, "-c", "c", file)
	require.NoError(t, err)
	_, _, err = execute(t, "import", "--uri", uri, "-c", "c", "--drop", file)
	require.NoError(t, err)

	stdout, _, err := execute(t, "uri="+uri, "query=select n from c", "output=json")
	require.NoError(t, err)
	assert.Equal(t, "{\"n\":1}\n{\"n\":2}\n", stdout)
}

func TestImport_JSONFormat(t *testing.T) {
	uri := "sqlite://" + filepath.Join(t.TempDir(), "docs.db")
	file := writeFixture(t, "one.cue", `name: "solo"`)

	stdout, _, err := execute(t, "--format", "json", "import", "--uri", uri, "-c", "x", file)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok","data":{"collection":"x","files":["`+file+`"],"documents":1}}`, stdout)
}

func TestImport_BadFixtureInsertsNothing(t *testing.T) {
	uri := "sqlite://" + filepath.Join(t.TempDir(), "docs.db")
	good := writeFixture(t, "good.json", `[{"a": 1}]`)
	bad := writeFixture(t, "bad.ndjson", "{\"a\": 1}\n{nope}\n")

	_, _, err := execute(t, "import", "--uri", uri, "-c", "x", good, bad)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ErrCodeFixture, ErrorCode(err))
	assert.Contains(t, err.Error(), "bad.ndjson:2")

	stdout, _, err := execute(t, "uri="+uri, "query=select a from x", "output=json")
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestImport_RequiresCollection(t *testing.T) {
	_, _, err := execute(t, "import", "--uri", "sqlite://x.db", "a.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
	assert.Contains(t, err.Error(), "collection")
}

func TestImport_RequiresURI(t *testing.T) {
	file := writeFixture(t, "a.json", `{"a": 1}`)
	_, _, err := execute(t, "import", "-c", "x", file)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ErrCodeMissingSetting, ErrorCode(err))
}
