package cfg

import (
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	Version = "1.2.3"
	if got := GetVersion(); got != "1.2.3" {
		t.Errorf("Expected version 1.2.3, got %q", got)
	}

	Version = ""
	if got := GetVersion(); got != "unknown" {
		t.Errorf("Expected fallback to unknown, got %q", got)
	}
}

func TestApplyTimezone(t *testing.T) {
	original := time.Local
	defer func() { time.Local = original }()

	if err := applyTimezone("America/New_York"); err != nil {
		t.Fatalf("Expected no error for valid timezone, got: %v", err)
	}
	if time.Local.String() != "America/New_York" {
		t.Errorf("Expected local timezone America/New_York, got %s", time.Local)
	}

	if err := applyTimezone("Not/AZone"); err == nil {
		t.Error("Expected error for invalid timezone")
	}

	// Empty timezone leaves the current setting alone.
	if err := applyTimezone(""); err != nil {
		t.Errorf("Expected no error for empty timezone, got: %v", err)
	}
}

func TestGetPanicsBeforeLoad(t *testing.T) {
	if globalCfg != nil {
		t.Skip("Configuration already loaded by another test")
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected Get to panic before Load")
		}
	}()

	Get()
}
