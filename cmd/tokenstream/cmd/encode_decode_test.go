package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tokenstream/pkg/manifest"
)

func sampleManifest() manifest.Manifest {
	return manifest.Manifest{
		Name:    "agent-tools",
		Version: "1.4.0",
		Platform: manifest.Platform{
			OS:   "linux",
			Arch: "amd64",
		},
		Files: []manifest.FileEntry{
			{Path: "bin/agent", Size: 4096, SHA256: []byte{0xde, 0xad, 0xbe, 0xef}},
			{Path: "bin/agent-helper", Size: 512, SHA256: []byte{0x01, 0x02}},
		},
		CompactFiles: []manifest.PathChecksum{
			{Path: "bin/agent", Checksum: []byte{0xde, 0xad, 0xbe, 0xef}},
		},
	}
}

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestEncodeCommandWritesTokenStreamBytes(t *testing.T) {
	tmpDir := t.TempDir()

	m := sampleManifest()
	raw, err := json.Marshal(m)
	require.NoError(t, err)

	inputPath := filepath.Join(tmpDir, "manifest.json")
	require.NoError(t, os.WriteFile(inputPath, raw, 0o644))

	outputPath := filepath.Join(tmpDir, "manifest.ts")
	runCommand(t, "encode", inputPath, "--output", outputPath)

	encoded, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, manifest.Encode(&m), encoded)
}

func TestDecodeCommandWritesJSON(t *testing.T) {
	tmpDir := t.TempDir()

	m := sampleManifest()
	inputPath := filepath.Join(tmpDir, "manifest.ts")
	require.NoError(t, os.WriteFile(inputPath, manifest.Encode(&m), 0o644))

	outputPath := filepath.Join(tmpDir, "manifest.json")
	runCommand(t, "decode", inputPath, "--output", outputPath)

	decoded, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	var got manifest.Manifest
	require.NoError(t, json.Unmarshal(decoded, &got))
	assert.Equal(t, m.Name, got.Name)
	assert.Equal(t, m.Version, got.Version)
	assert.Equal(t, m.Platform, got.Platform)
	assert.Equal(t, m.Files, got.Files)
}

func TestEncodeThenDecodeRoundTrips(t *testing.T) {
	tmpDir := t.TempDir()

	m := sampleManifest()
	raw, err := json.Marshal(m)
	require.NoError(t, err)

	jsonPath := filepath.Join(tmpDir, "manifest.json")
	require.NoError(t, os.WriteFile(jsonPath, raw, 0o644))

	tsPath := filepath.Join(tmpDir, "manifest.ts")
	runCommand(t, "encode", jsonPath, "--output", tsPath)

	roundTripPath := filepath.Join(tmpDir, "roundtrip.json")
	runCommand(t, "decode", tsPath, "--output", roundTripPath)

	roundTripped, err := os.ReadFile(roundTripPath)
	require.NoError(t, err)

	var got manifest.Manifest
	require.NoError(t, json.Unmarshal(roundTripped, &got))
	assert.Equal(t, m, got)
}

func TestDecodeCommandRejectsMalformedInput(t *testing.T) {
	tmpDir := t.TempDir()

	m := sampleManifest()
	encoded := manifest.Encode(&m)
	truncated := encoded[:len(encoded)-3]

	inputPath := filepath.Join(tmpDir, "garbage.ts")
	require.NoError(t, os.WriteFile(inputPath, truncated, 0o644))

	out := runCommand(t, "decode", inputPath)
	assert.Contains(t, out, "Error decoding manifest")
}
