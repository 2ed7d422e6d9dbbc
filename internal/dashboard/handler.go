package dashboard

import "time"

// Handler bridges entity-change notifications onto the WebSocket server.
// It satisfies the Broadcaster interfaces of both the data store and the
// file watcher, so a single handler covers CLI mutations and external
// edits alike.
type Handler struct {
	server *Server
}

// NewHandler wraps a server in a broadcast handler.
func NewHandler(server *Server) *Handler {
	return &Handler{server: server}
}

// EntityChanged publishes a change envelope. The channel is the plural of
// the entity type ("epics", "features", "milestones") and the message type
// is "<entityType>_updated" regardless of the action; the action field
// carries created/updated/deleted.
func (h *Handler) EntityChanged(entityType, entityID, action string) {
	if h == nil || h.server == nil {
		return
	}
	h.server.Broadcast(Message{
		Type:       entityType + "_updated",
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		Timestamp:  time.Now().Format(time.RFC3339),
	}, entityType+"s")
}
