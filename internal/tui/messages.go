package tui

import (
	"time"

	"github.com/tessro/roam/internal/api"
)

// changeMsg signals that controller state changed and the views should resync.
type changeMsg struct{}

// startMsg is the result of loading history and document lists on startup.
type startMsg struct {
	Err error
}

// sendResultMsg is the result of sending a chat message.
type sendResultMsg struct {
	Err error
}

// opResultMsg is the result of a document or panel operation.
type opResultMsg struct {
	Op  string
	Err error
}

// deleteResultMsg is the result of deleting a document.
type deleteResultMsg struct {
	Kind     api.Kind
	Filename string
	Err      error
}

// tickMsg is sent on regular intervals to drive spinner animation.
type tickMsg time.Time

// clearErrorMsg is sent to clear the error display after a timeout.
type clearErrorMsg struct{}
