package iojson

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteWith(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, WriteWith(&out, &errOut, map[string]int{"total": 3}))

	assert.Equal(t, "{\n  \"total\": 3\n}\n", out.String())
	assert.Empty(t, errOut.String())
}

func TestWriteWith_MarshalFailure(t *testing.T) {
	var out, errOut bytes.Buffer
	require.NoError(t, WriteWith(&out, &errOut, map[string]any{"bad": make(chan int)}))

	assert.Empty(t, out.String())
	var doc Error
	require.NoError(t, json.Unmarshal(errOut.Bytes(), &doc))
	assert.Equal(t, "encode JSON output", doc.Message)
	assert.Contains(t, doc.Data["json_error"], "chan")
}

func TestWriteLine(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, WriteLine(&out, map[string]string{"a": "<b>"}))
	require.NoError(t, WriteLine(&out, map[string]string{"c": "d"}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{`{"a":"<b>"}`, `{"c":"d"}`}, lines)
}

func TestFileReader(t *testing.T) {
	t.Run("stdin override", func(t *testing.T) {
		fr := FileReader[[]int]{Stdin: strings.NewReader("[1,2,3]")}
		got, err := fr.Read()
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, got)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "in.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"n": 1}`), 0o600))

		fr := FileReader[map[string]int]{fileFlagValue: path}
		got, err := fr.Read()
		require.NoError(t, err)
		assert.Equal(t, 1, got["n"])
		assert.Equal(t, path, fr.Path())
	})

	t.Run("bad json", func(t *testing.T) {
		fr := FileReader[[]int]{Stdin: strings.NewReader("[1,")}
		_, err := fr.Read()
		require.ErrorContains(t, err, "decode JSON")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadFile[[]int](filepath.Join(t.TempDir(), "nope.json"))
		require.ErrorContains(t, err, "open file")
	})
}
