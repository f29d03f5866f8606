package ws

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// EventPublisher, service katmanının hub'a olay göndermek için kullandığı interface.
// Service'ler *Hub'a değil bu interface'e bağımlıdır, testlerde sahtesi verilir.
type EventPublisher interface {
	BroadcastToUser(userID string, event Event)
}

// Hub, tüm aktif WebSocket bağlantılarını yönetir.
//
// clients: userID → o kullanıcının client kümesi.
// register/unregister channel'ları Run() goroutine'i tarafından işlenir.
type Hub struct {
	clients map[string]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	done       chan struct{} // Run çıkınca kapanır

	seq atomic.Int64

	logger *zap.Logger
}

// NewHub, yeni bir Hub oluşturur. Run() ayrı goroutine'de çağrılmalı.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.Named("ws"),
	}
}

// Run, register/unregister olaylarını ctx iptal edilene kadar işler.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ctx.Done():
			h.Shutdown()
			return
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Debug("client connected",
		zap.String("user_id", client.userID),
		zap.Int("connections", len(h.clients[client.userID])))
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}

	delete(clients, client)
	client.closeSend()

	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}
	h.logger.Debug("client disconnected",
		zap.String("user_id", client.userID),
		zap.Int("remaining", len(clients)))
}

// BroadcastToUser, bir kullanıcının TÜM bağlantılarına olay gönderir.
//
// Buffer'ı dolu client yavaş kabul edilir ve ayrı goroutine'de unregister
// edilir (RLock tutarken unregister channel'ına yazmak deadlock yaratır).
func (h *Hub) BroadcastToUser(userID string, event Event) {
	event.Seq = h.seq.Add(1)

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal user event", zap.String("op", event.Op), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		if !client.enqueue(data) {
			go h.drop(client)
		}
	}
}

// drop, client'ı unregister kuyruğuna koyar. Hub durmuşsa beklemez.
func (h *Hub) drop(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// ConnectionCount, bir kullanıcının açık bağlantı sayısı.
func (h *Hub) ConnectionCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Shutdown, tüm bağlantıları kapatır. Graceful shutdown sırasında çağrılır.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			client.closeSend()
		}
	}
	h.clients = make(map[string]map[*Client]bool)
	h.logger.Info("hub shut down, all connections closed")
}
