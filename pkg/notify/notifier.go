package notify

import (
	"encoding/json"
	"log/slog"

	"azv-admin-api/websocket"
)

// Notifier pushes realtime events to a manager's dashboards.
type Notifier interface {
	NotifyManager(manager string, event interface{})
	CloseSession(manager, sessionID string, event interface{})
}

// WSNotifier implements Notifier using a WebSocket Hub.
type WSNotifier struct {
	Hub *websocket.Hub
}

func (n *WSNotifier) NotifyManager(manager string, event interface{}) {
	if payload, ok := n.encode(event); ok {
		n.Hub.Notify(manager, payload)
	}
}

func (n *WSNotifier) CloseSession(manager, sessionID string, event interface{}) {
	if payload, ok := n.encode(event); ok {
		n.Hub.CloseSession(manager, sessionID, payload)
	}
}

func (n *WSNotifier) encode(event interface{}) ([]byte, bool) {
	if n == nil || n.Hub == nil {
		return nil, false
	}
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal notification", "err", err)
		return nil, false
	}
	return payload, true
}
