// Package wrerr defines the flat, phase-tagged error type shared by the
// syntax and program packages.
package wrerr

import "fmt"

// Phase identifies which stage of the compile pipeline produced an error.
type Phase string

const (
	Parse  Phase = "parse"
	Expand Phase = "expand"
	Emit   Phase = "emit"
)

// Error is the error type returned by Compile and every stage it drives.
// It carries enough context (phase, and the rune offset or name at fault)
// for a caller to report a useful diagnostic without the engine itself
// doing any formatting beyond a short message.
type Error struct {
	Phase   Phase
	Pos     int    // rune offset into the pattern; -1 if not applicable
	Name    string // subpattern/group name at fault; "" if not applicable
	Message string
}

func (e *Error) Error() string {
	switch {
	case e.Name != "":
		return fmt.Sprintf("%s error: %s: %q", e.Phase, e.Message, e.Name)
	case e.Pos >= 0:
		return fmt.Sprintf("%s error at %d: %s", e.Phase, e.Pos, e.Message)
	default:
		return fmt.Sprintf("%s error: %s", e.Phase, e.Message)
	}
}

// At builds a parse/expand/emit error anchored to a pattern offset.
func At(phase Phase, pos int, format string, args ...any) error {
	return &Error{Phase: phase, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Named builds an error anchored to a subpattern or group name.
func Named(phase Phase, name string, format string, args ...any) error {
	return &Error{Phase: phase, Pos: -1, Name: name, Message: fmt.Sprintf(format, args...)}
}
