package ws

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	frame := make([]byte, len(data))
	copy(frame, data)
	c.frames = append(c.frames, frame)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) lastFrame() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.frames) == 0 {
		return nil
	}
	return c.frames[len(c.frames)-1]
}

func TestSendDeliversJSON(t *testing.T) {
	registry := NewMemoryRegistry()
	conn := &fakeConn{}
	registry.Register("pc-1", conn)

	require.NoError(t, registry.Send("pc-1", Message{
		Type:  MessageTypeNewToken,
		Token: "tok-1",
	}))

	var msg Message
	require.NoError(t, json.Unmarshal(conn.lastFrame(), &msg))
	assert.Equal(t, MessageTypeNewToken, msg.Type)
	assert.Equal(t, "tok-1", msg.Token)
}

func TestSendToUnknownSlotIsDropped(t *testing.T) {
	registry := NewMemoryRegistry()
	assert.NoError(t, registry.Send("nobody", Message{Type: MessageTypeLogin}))
}

func TestRegisterClosesPreviousConn(t *testing.T) {
	registry := NewMemoryRegistry()
	first := &fakeConn{}
	second := &fakeConn{}

	registry.Register("pc-1", first)
	registry.Register("pc-1", second)

	assert.True(t, first.isClosed())
	assert.False(t, second.isClosed())

	require.NoError(t, registry.Send("pc-1", Message{Type: MessageTypeLogin}))
	assert.Nil(t, first.lastFrame())
	assert.NotNil(t, second.lastFrame())
}

func TestRemoveClosesAndUnbinds(t *testing.T) {
	registry := NewMemoryRegistry()
	conn := &fakeConn{}
	registry.Register("pc-1", conn)

	registry.Remove("pc-1")
	assert.True(t, conn.isClosed())

	require.NoError(t, registry.Send("pc-1", Message{Type: MessageTypeLogin}))
	assert.Nil(t, conn.lastFrame())
}

func TestConcurrentSends(t *testing.T) {
	registry := NewMemoryRegistry()
	conn := &fakeConn{}
	registry.Register("pc-1", conn)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = registry.Send("pc-1", Message{Type: MessageTypeNewToken, Token: "t"})
		}()
	}
	wg.Wait()

	conn.mu.Lock()
	defer conn.mu.Unlock()
	assert.Len(t, conn.frames, 50)
}
