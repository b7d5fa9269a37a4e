package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrHostSettings, "machine settings unavailable")
	if err.Code != ErrHostSettings {
		t.Errorf("code = %s, want %s", err.Code, ErrHostSettings)
	}
	want := "[HOST_SETTINGS] machine settings unavailable"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := stderrors.New("yaml: unmarshal error")
	err := Wrap(ErrConfigValidation, cause, "parsing job.yaml")

	if !stderrors.Is(err, cause) {
		t.Error("expected wrapped error to match with errors.Is")
	}
	if got := err.Error(); got != "[CONFIG_VALIDATION] parsing job.yaml: yaml: unmarshal error" {
		t.Errorf("Error() = %q", got)
	}
}

func TestCodeOf(t *testing.T) {
	err := New(ErrConfigValidation, "bad value")
	wrapped := fmt.Errorf("job settings: %w", err)

	if got := CodeOf(wrapped); got != ErrConfigValidation {
		t.Errorf("CodeOf = %s, want %s", got, ErrConfigValidation)
	}
	if CodeOf(stderrors.New("plain")) != "" {
		t.Error("expected empty code for plain error")
	}
	if !IsCode(wrapped, ErrConfigValidation) {
		t.Error("IsCode should match through wrapping")
	}
	if IsCode(wrapped, ErrHostSettings) {
		t.Error("IsCode matched the wrong code")
	}
}
