package events

import "github.com/mvasilenko/spreadhub/internal/importer"

// Client-visible event names, kept stable for subscribers.
const (
	EventImportProgress  = "ImportProgress"
	EventImportError     = "ImportError"
	EventImportCompleted = "ImportCompleted"
	EventJoinedFileGroup = "JoinedFileGroup"
)

// ImportNotifier adapts the hub to the importer's Notifier port, publishing
// each event to the group named by its file key.
type ImportNotifier struct {
	hub *Hub
}

// NewImportNotifier creates a notifier backed by the given hub.
func NewImportNotifier(hub *Hub) *ImportNotifier {
	return &ImportNotifier{hub: hub}
}

func (n *ImportNotifier) ImportProgress(event importer.ProgressEvent) {
	n.hub.Publish(event.FileKey, Event{Name: EventImportProgress, Data: event})
}

func (n *ImportNotifier) ImportError(event importer.ErrorEvent) {
	n.hub.Publish(event.FileKey, Event{Name: EventImportError, Data: event})
}

func (n *ImportNotifier) ImportCompleted(event importer.CompletedEvent) {
	n.hub.Publish(event.FileKey, Event{Name: EventImportCompleted, Data: event})
}
