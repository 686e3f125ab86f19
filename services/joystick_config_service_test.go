package services

import (
	"errors"
	"testing"

	"github.com/jun-zaga/RobotWebControl/pkg/config"
)

func newTestService(t *testing.T) JoystickConfigService {
	t.Helper()
	cfg := config.DefaultConsoleConfig()
	cfg.Robot.Mock = true
	svc, err := NewJoystickConfigService(cfg, nil)
	if err != nil {
		t.Fatalf("NewJoystickConfigService failed: %v", err)
	}
	return svc
}

func TestSettingsFromConfig(t *testing.T) {
	svc := newTestService(t)

	got := svc.GetCurrentSettings()
	want := JoystickSettings{InvertTurn: true, InvertForward: true, KnobRadius: 33, SendHz: 20, Mock: true}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}

	opts := svc.ControllerOptions()
	if !opts.Mapping.InvertTurn || !opts.Mapping.InvertForward || opts.SendHz != 20 || !opts.Mock {
		t.Errorf("Unexpected controller options: %+v", opts)
	}
}

func TestUpdateSettingsMerges(t *testing.T) {
	svc := newTestService(t)

	got, err := svc.UpdateSettings([]byte(`{"invertTurn":false,"mock":false}`))
	if err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if got.InvertTurn {
		t.Errorf("Expected invertTurn false")
	}
	if !got.InvertForward || got.SendHz != 20 {
		t.Errorf("Omitted fields changed: %+v", got)
	}
	if !got.Mock {
		t.Errorf("Mock must not change at runtime")
	}
	if svc.ControllerOptions().Mapping.InvertTurn {
		t.Errorf("Controller options not updated")
	}
}

func TestUpdateSettingsRejects(t *testing.T) {
	svc := newTestService(t)

	for _, patch := range []string{`{"sendHz":-5}`, `{"knobRadius":-1}`, `{"knobRadius":0}`, `not json`} {
		_, err := svc.UpdateSettings([]byte(patch))
		if !errors.Is(err, ErrInvalidSettings) {
			t.Errorf("Expected ErrInvalidSettings for %s, got %v", patch, err)
		}
	}
	cur := svc.GetCurrentSettings()
	if cur.SendHz != 20 || cur.KnobRadius != 33 {
		t.Errorf("Rejected update was applied: %+v", cur)
	}
}

func TestNilConfig(t *testing.T) {
	if _, err := NewJoystickConfigService(nil, nil); err == nil {
		t.Error("Expected error for nil config")
	}
}
