package config

import (
	"testing"
)

func TestLoadString(t *testing.T) {
	data := `
[printer]
kinematics: cartesian
minimum_feedrate: 1.5
max_velocity: 300

[fan]
cool_fan_enabled: true
cool_min_speed: 10
`

	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	if !cfg.HasSection("printer") {
		t.Error("expected [printer] section to exist")
	}
	if !cfg.HasSection("fan") {
		t.Error("expected [fan] section to exist")
	}
	if cfg.HasSection("nonexistent") {
		t.Error("expected [nonexistent] section to not exist")
	}

	printer, err := cfg.GetSection("printer")
	if err != nil {
		t.Fatalf("GetSection(printer) failed: %v", err)
	}
	if printer.GetName() != "printer" {
		t.Errorf("expected name 'printer', got '%s'", printer.GetName())
	}

	kin, err := printer.Get("kinematics")
	if err != nil {
		t.Fatalf("Get(kinematics) failed: %v", err)
	}
	if kin != "cartesian" {
		t.Errorf("expected 'cartesian', got '%s'", kin)
	}

	minFeed, err := printer.GetFloat("minimum_feedrate")
	if err != nil {
		t.Fatalf("GetFloat(minimum_feedrate) failed: %v", err)
	}
	if minFeed != 1.5 {
		t.Errorf("expected 1.5, got %f", minFeed)
	}

	maxVel, err := printer.GetInt("max_velocity")
	if err != nil {
		t.Fatalf("GetInt(max_velocity) failed: %v", err)
	}
	if maxVel != 300 {
		t.Errorf("expected 300, got %d", maxVel)
	}
}

func TestSectionFallbacksAndErrors(t *testing.T) {
	data := `
[test]
string_val: hello
int_val: 42
float_val: 3.14
bool_true: true
bool_false: no
bad_int: twelve
`

	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	sec, _ := cfg.GetSection("test")

	val, _ := sec.Get("missing", "default")
	if val != "default" {
		t.Errorf("expected 'default', got '%s'", val)
	}

	if _, err := sec.Get("missing"); err == nil {
		t.Error("expected error for missing option with no fallback")
	}

	i, _ := sec.GetInt("int_val")
	if i != 42 {
		t.Errorf("expected 42, got %d", i)
	}
	i, _ = sec.GetInt("missing", 99)
	if i != 99 {
		t.Errorf("expected 99, got %d", i)
	}
	if _, err := sec.GetInt("bad_int"); err == nil {
		t.Error("expected error for non-integer value")
	}

	f, _ := sec.GetFloat("float_val")
	if f != 3.14 {
		t.Errorf("expected 3.14, got %f", f)
	}

	b, _ := sec.GetBool("bool_true")
	if !b {
		t.Error("expected bool_true to be true")
	}
	b, _ = sec.GetBool("bool_false")
	if b {
		t.Error("expected bool_false to be false")
	}
	if _, err := sec.GetBool("string_val"); err == nil {
		t.Error("expected error for non-boolean value")
	}
}

func TestCommentsAndMerging(t *testing.T) {
	data := `
# full-line comment
[printer]
minimum_feedrate: 2 ; trailing comment

[printer]
max_velocity: 100
`

	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	printer, _ := cfg.GetSection("printer")

	mf, _ := printer.GetFloat("minimum_feedrate")
	if mf != 2 {
		t.Errorf("expected 2, got %f", mf)
	}
	if !printer.HasOption("max_velocity") {
		t.Error("duplicate sections should merge options")
	}
	if got := cfg.GetSectionNames(); len(got) != 1 {
		t.Errorf("expected one merged section, got %v", got)
	}
}

func TestMissingSection(t *testing.T) {
	cfg, _ := LoadString("[printer]\nminimum_feedrate: 0\n")
	if _, err := cfg.GetSection("fan"); err == nil {
		t.Error("expected error for missing section")
	}
	if cfg.GetSectionOptional("fan") != nil {
		t.Error("expected nil for missing optional section")
	}
}
