package command

import "testing"

func TestCommand_Names(t *testing.T) {
	tests := []struct {
		cmd      Command
		expected string
	}{
		{&LoadDirectory{Dir: "/tmp"}, "LoadDirectory"},
		{&LoadFrames{}, "LoadFrames"},
		{&NextPair{}, "NextPair"},
		{NewClick(SideA, 1, 2), "Click"},
		{&ZoomIn{}, "ZoomIn"},
		{&ZoomOut{}, "ZoomOut"},
		{&Wheel{In: true}, "Wheel"},
		{&ResetView{}, "ResetView"},
		{&BeginPan{}, "BeginPan"},
		{&PanTo{}, "PanTo"},
		{&EndPan{}, "EndPan"},
		{&Save{}, "Save"},
		{&Autosave{}, "Autosave"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.cmd.CommandName(); got != tt.expected {
				t.Errorf("CommandName() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestNewClick(t *testing.T) {
	cmd := NewClick(SideB, 10.5, 20.25)

	if cmd.Side != SideB {
		t.Errorf("Side = %v, want B", cmd.Side)
	}
	if cmd.X != 10.5 || cmd.Y != 20.25 {
		t.Errorf("Position = (%v, %v), want (10.5, 20.25)", cmd.X, cmd.Y)
	}
}

func TestSide_String(t *testing.T) {
	if SideA.String() != "A" {
		t.Errorf("SideA.String() = %v, want A", SideA.String())
	}
	if SideB.String() != "B" {
		t.Errorf("SideB.String() = %v, want B", SideB.String())
	}
}
