package controller

import (
	"errors"

	"github.com/tessro/roam/internal/api"
)

// Messages shown in place of the assistant's reply when a send fails.
const (
	ServerErrorText  = "Sorry, I encountered an error processing your request. Please try again."
	NetworkErrorText = "Sorry, I encountered a network error. Please check your connection and try again."
)

// Sentinel errors for controller operations.
// These can be checked using errors.Is().
var (
	// ErrBusy is returned by Send while a previous reply is still pending.
	ErrBusy = errors.New("controller: a reply is already pending")

	// ErrEmptyMessage is returned by Send for blank input. Nothing is sent.
	ErrEmptyMessage = errors.New("controller: message is empty")

	// ErrNoDocument is returned by item edits when no matching document is open.
	ErrNoDocument = errors.New("controller: no document of that kind is open")

	// ErrNoItem is returned by item edits for an unknown item ID.
	ErrNoItem = errors.New("controller: no such item")

	// ErrDeclined is returned by DeleteDocument when the user does not confirm.
	ErrDeclined = errors.New("controller: delete not confirmed")
)

// failureText picks the placeholder reply for a failed chat request.
// Only a completed request with a non-ok status is a server error; anything
// else, including an unreadable reply, counts as a network failure.
func failureText(err error) string {
	if api.IsStatus(err) {
		return ServerErrorText
	}
	return NetworkErrorText
}
