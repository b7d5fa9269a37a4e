package ratelimit

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Sophist-UK/Cura-PostProcessingScripts/pkg/errors"
)

// Schema defaults, mirroring the script's settings dialog.
const (
	// DefaultMaxPerSec is the default command-rate ceiling.
	DefaultMaxPerSec = 50

	// FloorMinPrintSpeed is the absolute floor print speed in mm/s;
	// lower configured values are clamped, not rejected.
	FloorMinPrintSpeed = 0.1
)

// Settings holds the per-job options for the rate-limiting pass.
type Settings struct {
	// Enabled gates the whole pass; when false the input is returned
	// unchanged.
	Enabled bool `yaml:"enabled"`

	// MaxPerSec is the target maximum number of G-code commands per
	// second. Values below 1 are clamped to 1.
	MaxPerSec int `yaml:"max_per_sec"`

	// MinPrintSpeed is the floor print speed in mm/s. Zero means
	// "derive the floor from the machine settings".
	MinPrintSpeed float64 `yaml:"min_print_speed"`

	// Verbose keeps each rewritten line's original as a comment and
	// re-emits the feed rate even when it matches the previous override.
	Verbose bool `yaml:"verbose"`

	// DebugLayers is the number of leading layers to trace, decremented
	// per layer. Tracing never changes the emitted G-code.
	DebugLayers int `yaml:"debug"`
}

// DefaultSettings returns the schema defaults with the pass enabled.
func DefaultSettings() Settings {
	return Settings{
		Enabled:   true,
		MaxPerSec: DefaultMaxPerSec,
	}
}

// LoadSettings reads Settings from a YAML file. Keys absent from the file
// keep their defaults. Out-of-range values are clamped by New, not here,
// so a job file can never make the pass fail.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, errors.Wrap(errors.ErrConfigValidation, err, "parsing %s", path)
	}
	return s, nil
}
