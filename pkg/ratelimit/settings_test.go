package ratelimit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sophist-UK/Cura-PostProcessingScripts/pkg/errors"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.True(t, s.Enabled)
	assert.Equal(t, 50, s.MaxPerSec)
	assert.Equal(t, 0.0, s.MinPrintSpeed)
	assert.False(t, s.Verbose)
	assert.Equal(t, 0, s.DebugLayers)
}

func TestLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	data := `
enabled: true
max_per_sec: 25
min_print_speed: 2.5
verbose: true
debug: 3
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, Settings{
		Enabled:       true,
		MaxPerSec:     25,
		MinPrintSpeed: 2.5,
		Verbose:       true,
		DebugLayers:   3,
	}, s)
}

func TestLoadSettingsPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_per_sec: 10\n"), 0o644))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.True(t, s.Enabled)
	assert.Equal(t, 10, s.MaxPerSec)
}

func TestLoadSettingsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_per_sec: [oops\n"), 0o644))

	_, err := LoadSettings(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfigValidation))
}

func TestLoadSettingsMissingFile(t *testing.T) {
	s, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	// Defaults still come back so callers can report and continue.
	assert.Equal(t, DefaultSettings(), s)
}
