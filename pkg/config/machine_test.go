package config

import (
	"testing"
)

func TestLoadMachine(t *testing.T) {
	cfg, err := LoadString(`
[printer]
minimum_feedrate: 2.5

[fan]
cool_fan_enabled: true
cool_min_speed: 10
`)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}

	m, err := LoadMachine(cfg)
	if err != nil {
		t.Fatalf("LoadMachine: %v", err)
	}
	if m.MinimumFeedrate != 2.5 {
		t.Errorf("MinimumFeedrate = %v", m.MinimumFeedrate)
	}
	if !m.CoolFanEnabled || m.CoolMinSpeed != 10 {
		t.Errorf("fan settings = %+v", m)
	}
	if got := m.MinPrintSpeedDefault(); got != 10 {
		t.Errorf("MinPrintSpeedDefault = %v, want cooling minimum 10", got)
	}
}

func TestLoadMachineNoFan(t *testing.T) {
	cfg, _ := LoadString("[printer]\nminimum_feedrate: 3\n")

	m, err := LoadMachine(cfg)
	if err != nil {
		t.Fatalf("LoadMachine: %v", err)
	}
	if m.CoolFanEnabled {
		t.Error("cooling should be disabled without a [fan] section")
	}
	if got := m.MinPrintSpeedDefault(); got != 3 {
		t.Errorf("MinPrintSpeedDefault = %v, want machine minimum 3", got)
	}
}

func TestLoadMachineCoolingDisabled(t *testing.T) {
	cfg, _ := LoadString(`
[printer]
minimum_feedrate: 1

[fan]
cool_fan_enabled: false
cool_min_speed: 10
`)

	m, err := LoadMachine(cfg)
	if err != nil {
		t.Fatalf("LoadMachine: %v", err)
	}
	if got := m.MinPrintSpeedDefault(); got != 1 {
		t.Errorf("MinPrintSpeedDefault = %v, want machine minimum when cooling disabled", got)
	}
}

func TestLoadMachineMissingPrinterSection(t *testing.T) {
	cfg, _ := LoadString("[fan]\ncool_min_speed: 10\n")
	if _, err := LoadMachine(cfg); err == nil {
		t.Fatal("expected error when [printer] section is missing")
	}
}
