package ui

import "testing"

func TestClampSpeed(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-3, 1},
		{0, 1},
		{1, 1},
		{7, 7},
		{MaxSpeed, MaxSpeed},
		{MaxSpeed + 1, MaxSpeed},
	}
	for _, tt := range tests {
		if got := clampSpeed(tt.in); got != tt.want {
			t.Errorf("clampSpeed(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestToggleText(t *testing.T) {
	if got := toggleText(true, "Resume", "Pause"); got != "Resume" {
		t.Errorf("paused label = %q, want Resume", got)
	}
	if got := toggleText(false, "Resume", "Pause"); got != "Pause" {
		t.Errorf("running label = %q, want Pause", got)
	}
}

func TestNewHUDStartsAtNormalSpeed(t *testing.T) {
	h := NewHUD()
	if h.Speed != 1 || h.Paused || h.ShowInspector {
		t.Errorf("NewHUD = speed %d paused %v inspector %v", h.Speed, h.Paused, h.ShowInspector)
	}
}
