package http

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mvasilenko/spreadhub/internal/events"
)

// EventsController streams import progress notifications to subscribers over
// Server-Sent Events. Clients join the group named by the upload's fileKey,
// before or during the run, and receive progress, error and completion
// events in publication order.
type EventsController struct {
	hub *events.Hub
}

func NewEventsController(hub *events.Hub) *EventsController {
	return &EventsController{hub: hub}
}

// Stream handles GET /api/import/events/:fileKey. The stream ends after the
// completion event, or when the client disconnects. A fatally aborted run
// never emits a completion event; clients observe the stream staying silent
// and time out on their side.
func (c *EventsController) Stream(ctx *gin.Context) {
	fileKey := strings.TrimSpace(ctx.Param("fileKey"))
	if fileKey == "" {
		respondBadRequest(ctx, "fileKey is required")
		return
	}

	sub := c.hub.Subscribe(fileKey)
	defer sub.Close()

	ctx.Writer.Header().Set("Cache-Control", "no-cache")
	ctx.Writer.Header().Set("Connection", "keep-alive")

	ctx.SSEvent(events.EventJoinedFileGroup, gin.H{
		"fileKey": fileKey,
		"message": "Joined file group: " + fileKey,
	})
	ctx.Writer.Flush()

	clientGone := ctx.Request.Context().Done()
	ctx.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case event, ok := <-sub.C:
			if !ok {
				return false
			}
			ctx.SSEvent(event.Name, event.Data)
			return event.Name != events.EventImportCompleted
		}
	})
}
