package controller

import (
	"github.com/tessro/roam/internal/api"
	"github.com/tessro/roam/internal/conversation"
	"github.com/tessro/roam/internal/registry"
)

// ChangeType names what a Change reports.
type ChangeType int

const (
	MessageAppended ChangeType = iota
	MessageCompleted
	MessageFailed
	HistoryLoaded
	HistoryCleared
	DocumentOpened
	DocumentClosed
	DocumentUpdated
	DocumentRemoved
	DocumentsRefreshed
	PanelChanged
)

var changeNames = [...]string{
	MessageAppended:    "message-appended",
	MessageCompleted:   "message-completed",
	MessageFailed:      "message-failed",
	HistoryLoaded:      "history-loaded",
	HistoryCleared:     "history-cleared",
	DocumentOpened:     "document-opened",
	DocumentClosed:     "document-closed",
	DocumentUpdated:    "document-updated",
	DocumentRemoved:    "document-removed",
	DocumentsRefreshed: "documents-refreshed",
	PanelChanged:       "panel-changed",
}

func (t ChangeType) String() string {
	if int(t) >= 0 && int(t) < len(changeNames) {
		return changeNames[t]
	}
	return "unknown"
}

// Change is emitted after the controller's state changes.
// Only the fields relevant to Type are set.
type Change struct {
	Type ChangeType

	// Entry is the conversation entry for message changes.
	Entry conversation.ID

	// Kind and Filename identify the document for document changes.
	Kind     api.Kind
	Filename string

	// Refresh carries per-category results for DocumentsRefreshed.
	Refresh registry.RefreshResult

	// Err is the failure behind MessageFailed.
	Err error
}
