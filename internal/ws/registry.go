package ws

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Message is one frame of the pairing relay protocol, in either direction.
type Message struct {
	Type    string `json:"type"`
	Token   string `json:"token,omitempty"`
	PcID    string `json:"pcId,omitempty"`
	Message string `json:"message,omitempty"`
}

// Server→client message types.
const (
	MessageTypeInitialization = "INITIALIZATION"
	MessageTypeNewToken       = "NEWTOKEN"
	MessageTypeLogin          = "LOGIN"
	MessageTypeError          = "ERROR"
)

// Client→server message types.
const (
	InboundTypeNewToken = "newToken"
)

// Conn is the connection surface the registry needs; satisfied by
// *websocket.Conn and by test doubles.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Registry tracks at most one live connection per pairing slot and addresses
// every push to a single slot. It replaces the process-wide connection maps
// of a singleton design with an injectable capability.
type Registry interface {
	// Register binds a connection to a pairing slot, closing any previous
	// connection bound to the same slot.
	Register(pcID string, conn Conn)

	// Send pushes one message to the slot's connection. Pushes to unknown
	// slots are dropped; delivery is fire-and-forget.
	Send(pcID string, msg Message) error

	// Remove closes and unbinds the slot's connection, if any.
	Remove(pcID string)
}

type connEntry struct {
	conn Conn
	// writeMu serializes writes; the websocket library permits only one
	// concurrent writer per connection.
	writeMu sync.Mutex
}

// MemoryRegistry is the in-process Registry implementation.
type MemoryRegistry struct {
	mu    sync.RWMutex
	conns map[string]*connEntry
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{conns: make(map[string]*connEntry)}
}

// Register implements Registry.
func (r *MemoryRegistry) Register(pcID string, conn Conn) {
	r.mu.Lock()
	previous := r.conns[pcID]
	r.conns[pcID] = &connEntry{conn: conn}
	r.mu.Unlock()

	if previous != nil {
		_ = previous.conn.Close()
	}
}

// Send implements Registry.
func (r *MemoryRegistry) Send(pcID string, msg Message) error {
	r.mu.RLock()
	entry := r.conns[pcID]
	r.mu.RUnlock()

	if entry == nil {
		return nil
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	entry.writeMu.Lock()
	defer entry.writeMu.Unlock()
	return entry.conn.WriteMessage(websocket.TextMessage, data)
}

// Remove implements Registry.
func (r *MemoryRegistry) Remove(pcID string) {
	r.mu.Lock()
	entry := r.conns[pcID]
	delete(r.conns, pcID)
	r.mu.Unlock()

	if entry != nil {
		_ = entry.conn.Close()
	}
}
