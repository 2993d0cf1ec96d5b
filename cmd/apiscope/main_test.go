package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/apiscope"
)

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, validateFormat("text"))
	assert.NoError(t, validateFormat("json"))
	assert.Error(t, validateFormat("yaml"))
	assert.Error(t, validateFormat(""))
}

func TestResolveTargetDir_Default(t *testing.T) {
	dir, err := resolveTargetDir(nil)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(dir))
}

func TestResolveTargetDir_Explicit(t *testing.T) {
	tmp := t.TempDir()
	dir, err := resolveTargetDir([]string{tmp})
	require.NoError(t, err)
	assert.Equal(t, tmp, dir)
}

func TestResolveTargetDir_Missing(t *testing.T) {
	_, err := resolveTargetDir([]string{filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)
}

func TestResolveTargetDir_NotADirectory(t *testing.T) {
	tmp := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(tmp, []byte("x"), 0o644))
	_, err := resolveTargetDir([]string{tmp})
	assert.Error(t, err)
}

func TestConfigPath_Override(t *testing.T) {
	old := flagConfig
	defer func() { flagConfig = old }()

	flagConfig = "/etc/apiscope.toml"
	assert.Equal(t, "/etc/apiscope.toml", configPath("/project"))

	flagConfig = ""
	assert.Equal(t, filepath.Join("/project", "apiscope.toml"), configPath("/project"))
}

func TestPrintResults_JSON(t *testing.T) {
	old := flagFormat
	defer func() { flagFormat = old }()
	flagFormat = "json"

	var buf bytes.Buffer
	results := []apiscope.Result{{Path: "a.ex", Valid: true, Calls: []string{"Enum.map/2"}}}
	require.NoError(t, printResults(&buf, results))

	var decoded []apiscope.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "a.ex", decoded[0].Path)
	assert.True(t, decoded[0].Valid)
}
