package realtime

import (
	"time"

	"github.com/wonny/allocation/internal/contracts"
)

// Publisher receives dashboard events from a Source
type Publisher interface {
	Publish(ev contracts.DashboardEvent)
}

// Websocket keepalive settings
const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second

	// Clients never send anything meaningful; keep reads small
	maxMessageSize = 512

	// Events buffered per client before it is treated as slow and dropped
	defaultSendBuffer = 16
)
