package resume

import (
	"testing"

	"github.com/adrg/xdg"
)

func useTempState(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	xdg.Reload()
}

func TestRoundTrip(t *testing.T) {
	useTempState(t)

	in := &State{
		Direction: "load",
		File:      "game.z64",
		Bank:      "rom",
		Offset:    0x180000,
		Moved:     0x180000,
	}
	if err := Save(in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out == nil {
		t.Fatal("Load returned nil after Save")
	}
	if out.Direction != in.Direction || out.File != in.File || out.Bank != in.Bank ||
		out.Offset != in.Offset || out.Moved != in.Moved {
		t.Errorf("Load = %+v, want %+v", out, in)
	}
	if out.SavedAt.IsZero() {
		t.Error("SavedAt not stamped")
	}
}

func TestLoadWithoutState(t *testing.T) {
	useTempState(t)

	st, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if st != nil {
		t.Errorf("Load = %+v, want nil", st)
	}
}

func TestClear(t *testing.T) {
	useTempState(t)

	if err := Save(&State{Direction: "dump"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if st, _ := Load(); st != nil {
		t.Errorf("state survived Clear: %+v", st)
	}
	// Clearing twice is fine.
	if err := Clear(); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}
