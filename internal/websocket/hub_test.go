package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(h *Hub) *Client {
	return NewClient(h, nil, "user-1")
}

func recvMessage(t *testing.T, c *Client) *Message {
	t.Helper()
	select {
	case data := <-c.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return &msg
	default:
		t.Fatal("没有收到消息")
		return nil
	}
}

func TestHubSubscribeAndNotify(t *testing.T) {
	h := NewHub(zap.NewNop())
	c := newTestClient(h)

	h.registerClient(c)
	assert.Equal(t, 1, h.ClientCount())
	assert.Equal(t, MessageTypeConnected, recvMessage(t, c).Type)

	h.Subscribe(c, "game-1")
	assert.Equal(t, MessageTypeSubscribed, recvMessage(t, c).Type)

	h.NotifySequence("game-1", 7)
	msg := recvMessage(t, c)
	assert.Equal(t, MessageTypeSequenceUpdate, msg.Type)
	assert.Equal(t, "game-1", msg.GameID)
	assert.Equal(t, uint64(7), msg.Sequence)

	// 未订阅的对局不推送
	h.NotifySequence("game-2", 9)
	select {
	case <-c.Send:
		t.Fatal("收到了未订阅对局的推送")
	default:
	}
}

func TestHubUnregisterRemovesSubscriptions(t *testing.T) {
	h := NewHub(zap.NewNop())
	c := newTestClient(h)

	h.registerClient(c)
	h.Subscribe(c, "game-1")
	h.unregisterClient(c)

	assert.Equal(t, 0, h.ClientCount())
	// 通道已关闭，推送不会panic
	h.NotifySequence("game-1", 3)
}

func TestClientHandleMessage(t *testing.T) {
	h := NewHub(zap.NewNop())
	c := newTestClient(h)
	h.registerClient(c)
	recvMessage(t, c) // connected

	c.handleMessage([]byte(`{"type":"subscribe","game_id":"game-9"}`))
	assert.Equal(t, MessageTypeSubscribed, recvMessage(t, c).Type)

	c.handleMessage([]byte(`{"type":"ping"}`))
	assert.Equal(t, MessageTypePong, recvMessage(t, c).Type)

	c.handleMessage([]byte(`not json`))
	assert.Equal(t, MessageTypeError, recvMessage(t, c).Type)
}
