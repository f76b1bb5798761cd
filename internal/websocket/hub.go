package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Hub WebSocket连接管理中心。
// 客户端按对局订阅，序号变更时收到推送，
// 作为HTTP轮询之外的廉价变更通知
type Hub struct {
	// 客户端连接池
	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 对局ID到订阅客户端的映射
	gameClients map[string]map[string]*Client
	gameMu      sync.RWMutex

	// 注册/注销通道
	register   chan *Client
	unregister chan *Client

	logger *zap.Logger
}

// Message WebSocket消息
type Message struct {
	Type      string          `json:"type"`
	GameID    string          `json:"game_id,omitempty"`
	Sequence  uint64          `json:"sequence,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// MessageType 消息类型
const (
	MessageTypeConnected      = "connected"
	MessageTypeSubscribe      = "subscribe"
	MessageTypeSubscribed     = "subscribed"
	MessageTypeSequenceUpdate = "sequence_update"
	MessageTypePing           = "ping"
	MessageTypePong           = "pong"
	MessageTypeError          = "error"
)

// NewHub 创建Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:     make(map[string]*Client),
		gameClients: make(map[string]map[string]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		logger:      logger,
	}
}

// Run 运行Hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

// registerClient 注册客户端
func (h *Hub) registerClient(client *Client) {
	h.clientsMu.Lock()
	h.clients[client.ID] = client
	h.clientsMu.Unlock()

	h.logger.Info("WebSocket客户端连接",
		zap.String("client_id", client.ID),
		zap.String("user_id", client.UserID))

	client.sendMessage(&Message{
		Type:      MessageTypeConnected,
		Timestamp: time.Now().Unix(),
	})
}

// unregisterClient 注销客户端并解除全部订阅
func (h *Hub) unregisterClient(client *Client) {
	h.clientsMu.Lock()
	if _, ok := h.clients[client.ID]; !ok {
		h.clientsMu.Unlock()
		return
	}
	delete(h.clients, client.ID)
	h.clientsMu.Unlock()

	h.gameMu.Lock()
	for gameID, subs := range h.gameClients {
		delete(subs, client.ID)
		if len(subs) == 0 {
			delete(h.gameClients, gameID)
		}
	}
	h.gameMu.Unlock()

	close(client.Send)
	h.logger.Info("WebSocket客户端断开",
		zap.String("client_id", client.ID))
}

// Subscribe 客户端订阅一局游戏的序号推送
func (h *Hub) Subscribe(client *Client, gameID string) {
	h.gameMu.Lock()
	subs, ok := h.gameClients[gameID]
	if !ok {
		subs = make(map[string]*Client)
		h.gameClients[gameID] = subs
	}
	subs[client.ID] = client
	h.gameMu.Unlock()

	client.sendMessage(&Message{
		Type:      MessageTypeSubscribed,
		GameID:    gameID,
		Timestamp: time.Now().Unix(),
	})
}

// NotifySequence 向一局游戏的订阅者推送最新序号。
// 挂接到对局管理器的变更回调上
func (h *Hub) NotifySequence(gameID string, sequence uint64) {
	msg := &Message{
		Type:      MessageTypeSequenceUpdate,
		GameID:    gameID,
		Sequence:  sequence,
		Timestamp: time.Now().Unix(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.gameMu.RLock()
	subs := make([]*Client, 0, len(h.gameClients[gameID]))
	for _, c := range h.gameClients[gameID] {
		subs = append(subs, c)
	}
	h.gameMu.RUnlock()

	for _, c := range subs {
		select {
		case c.Send <- data:
		default:
			// 发送缓冲满的慢客户端直接丢消息，下次推送会补上最新序号
			h.logger.Warn("WebSocket发送缓冲已满",
				zap.String("client_id", c.ID))
		}
	}
}

// ClientCount 当前连接数
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}
