package tui

import (
	"errors"

	"github.com/tessro/roam/internal/api"
)

// Mode represents the current interaction mode of the TUI.
// Only one mode can be active at a time.
type Mode int

const (
	// ModeNormal is the default mode for navigating the TUI.
	ModeNormal Mode = iota
	// ModeInput means the user is typing a message.
	ModeInput
	// ModeDeleteConfirm means the user is being asked to confirm a delete.
	ModeDeleteConfirm
)

// String returns the string representation of a Mode.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeInput:
		return "input"
	case ModeDeleteConfirm:
		return "delete_confirm"
	default:
		return "unknown"
	}
}

// Focus indicates which pane receives navigation keys in normal mode.
type Focus int

const (
	FocusChat Focus = iota
	FocusPanel
)

// PendingDelete is the document awaiting delete confirmation.
type PendingDelete struct {
	Kind     api.Kind
	Filename string
}

// ModeState centralizes mode and focus state for the TUI.
type ModeState struct {
	Mode  Mode
	Focus Focus

	// Delete is only valid when Mode == ModeDeleteConfirm.
	Delete PendingDelete
}

// NewModeState starts in input mode so the user can type right away.
func NewModeState() ModeState {
	return ModeState{
		Mode:  ModeInput,
		Focus: FocusChat,
	}
}

// Validation errors for mode state transitions.
var (
	ErrInvalidModeTransition = errors.New("invalid mode transition")
	ErrMissingFilename       = errors.New("delete requires a filename")
	ErrAlreadyInMode         = errors.New("already in this mode")
)

// SetFocus changes the focused pane. Only valid in normal mode.
func (s *ModeState) SetFocus(focus Focus) error {
	if s.Mode != ModeNormal {
		return ErrInvalidModeTransition
	}
	s.Focus = focus
	return nil
}

// CycleFocus toggles between the chat and the document panel.
func (s *ModeState) CycleFocus() (Focus, error) {
	if s.Mode != ModeNormal {
		return s.Focus, ErrInvalidModeTransition
	}
	if s.Focus == FocusChat {
		s.Focus = FocusPanel
	} else {
		s.Focus = FocusChat
	}
	return s.Focus, nil
}

// EnterInputMode transitions to input mode.
func (s *ModeState) EnterInputMode() error {
	if s.Mode == ModeInput {
		return ErrAlreadyInMode
	}
	if s.Mode == ModeDeleteConfirm {
		return ErrInvalidModeTransition
	}
	s.Mode = ModeInput
	s.Focus = FocusChat
	return nil
}

// ExitInputMode returns from input mode to normal mode.
func (s *ModeState) ExitInputMode() error {
	if s.Mode != ModeInput {
		return ErrInvalidModeTransition
	}
	s.Mode = ModeNormal
	return nil
}

// EnterDeleteConfirm asks for confirmation before deleting filename.
func (s *ModeState) EnterDeleteConfirm(kind api.Kind, filename string) error {
	if filename == "" {
		return ErrMissingFilename
	}
	if s.Mode == ModeDeleteConfirm {
		return ErrAlreadyInMode
	}
	if s.Mode == ModeInput {
		return ErrInvalidModeTransition
	}
	s.Mode = ModeDeleteConfirm
	s.Delete = PendingDelete{Kind: kind, Filename: filename}
	return nil
}

// ConfirmDelete returns the document to delete and goes back to normal mode.
func (s *ModeState) ConfirmDelete() (PendingDelete, error) {
	if s.Mode != ModeDeleteConfirm {
		return PendingDelete{}, ErrInvalidModeTransition
	}
	d := s.Delete
	s.Mode = ModeNormal
	s.Delete = PendingDelete{}
	return d, nil
}

// CancelDelete abandons the pending delete.
func (s *ModeState) CancelDelete() error {
	if s.Mode != ModeDeleteConfirm {
		return ErrInvalidModeTransition
	}
	s.Mode = ModeNormal
	s.Delete = PendingDelete{}
	return nil
}

// IsNormal returns true if in normal mode.
func (s *ModeState) IsNormal() bool {
	return s.Mode == ModeNormal
}

// IsInputting returns true if in input mode.
func (s *ModeState) IsInputting() bool {
	return s.Mode == ModeInput
}

// IsDeleteConfirming returns true if a delete awaits confirmation.
func (s *ModeState) IsDeleteConfirming() bool {
	return s.Mode == ModeDeleteConfirm
}

// Validate checks that the mode state is internally consistent.
func (s *ModeState) Validate() error {
	switch s.Mode {
	case ModeDeleteConfirm:
		if s.Delete.Filename == "" {
			return ErrMissingFilename
		}
	default:
		if s.Delete.Filename != "" {
			return errors.New("pending delete should be empty outside delete confirmation")
		}
	}
	return nil
}
