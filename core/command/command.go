// Package command defines all commands that can be sent to the application.
// Commands represent user intentions and are processed by the application layer.
package command

// Command is the base interface for all commands.
// Commands are sent from the presentation layer to the application layer.
type Command interface {
	// CommandName returns the name of the command for logging/debugging
	CommandName() string
}

// Side identifies the frame panel a pointer command targets.
type Side int

const (
	// SideA is the left frame panel.
	SideA Side = iota
	// SideB is the right frame panel.
	SideB
)

func (s Side) String() string {
	if s == SideB {
		return "B"
	}
	return "A"
}
