package config

// MachineSettings holds the machine limits the post-processor consults.
// They come from the host's printer configuration, not from the per-job
// script settings.
type MachineSettings struct {
	// MinimumFeedrate is the machine's minimum print speed in mm/s.
	MinimumFeedrate float64

	// CoolFanEnabled reports whether print cooling is enabled.
	CoolFanEnabled bool

	// CoolMinSpeed is the minimum print speed for cooling in mm/s,
	// meaningful only when CoolFanEnabled is set.
	CoolMinSpeed float64
}

// LoadMachine extracts MachineSettings from a parsed printer config.
// The [printer] section is required: without it the machine's speed floor
// is unknown and callers must treat the whole invocation as failed.
// The [fan] section is optional; absence means no print cooling.
func LoadMachine(cfg *Config) (*MachineSettings, error) {
	printer, err := cfg.GetSection("printer")
	if err != nil {
		return nil, err
	}

	m := &MachineSettings{}
	if m.MinimumFeedrate, err = printer.GetFloat("minimum_feedrate", 0.0); err != nil {
		return nil, err
	}

	if fan := cfg.GetSectionOptional("fan"); fan != nil {
		if m.CoolFanEnabled, err = fan.GetBool("cool_fan_enabled", true); err != nil {
			return nil, err
		}
		if m.CoolMinSpeed, err = fan.GetFloat("cool_min_speed", 0.0); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// MinPrintSpeedDefault derives the default floor print speed in mm/s:
// the larger of the machine minimum and the cooling minimum when cooling
// is enabled, otherwise the machine minimum alone.
func (m *MachineSettings) MinPrintSpeedDefault() float64 {
	if m.CoolFanEnabled && m.CoolMinSpeed > m.MinimumFeedrate {
		return m.CoolMinSpeed
	}
	return m.MinimumFeedrate
}
