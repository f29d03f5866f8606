package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// writeWait, tek bir yazma işleminin maksimum süresi.
	writeWait = 10 * time.Second

	// pongWait, heartbeat gelmezse bağlantının kapatılacağı süre.
	// Client 30sn'de bir heartbeat gönderir, 3 kaçırma tolere edilir.
	pongWait = 90 * time.Second

	maxMessageSize = 4096

	sendBufferSize = 64
)

// Client, tek bir WebSocket bağlantısını temsil eder.
//
// Her client iki goroutine çalıştırır:
//   - ReadPump: client'tan gelen mesajları okur
//   - WritePump: send channel'ındaki mesajları client'a yazar
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
	mu     sync.Mutex // conn yazmalarını korur

	// sendMu, send channel'ını ve closed bayrağını korur. Hub send'i
	// kapattıktan sonra ReadPump hâlâ heartbeat_ack yazmaya çalışabilir.
	sendMu sync.Mutex
	closed bool
}

// enqueue, mesajı send buffer'ına koyar. Buffer doluysa false döner.
// Kapanmış client'a gelen mesaj sessizce atılır.
func (c *Client) enqueue(data []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.closed {
		return true
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// closeSend, send channel'ını bir kez kapatır. WritePump close frame gönderip çıkar.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// ReadPump, bağlantı kapanana kadar client mesajlarını okur.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.drop(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("unexpected close", zap.String("user_id", c.userID), zap.Error(err))
			}
			return
		}

		var event Event
		if err := json.Unmarshal(raw, &event); err != nil {
			c.hub.logger.Debug("invalid message", zap.String("user_id", c.userID), zap.Error(err))
			continue
		}

		c.handleEvent(event)
	}
}

// handleEvent, client'tan gelen olayı op'a göre işler.
// Maç değişiklikleri REST üzerinden yapılır, socket sadece heartbeat alır.
func (c *Client) handleEvent(event Event) {
	switch event.Op {
	case OpHeartbeat:
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return
		}
		c.sendEvent(Event{Op: OpHeartbeatAck})

	default:
		c.hub.logger.Debug("unknown op", zap.String("user_id", c.userID), zap.String("op", event.Op))
	}
}

// sendEvent, sadece bu client'a olay gönderir.
func (c *Client) sendEvent(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		c.hub.logger.Error("failed to marshal event", zap.String("op", event.Op), zap.Error(err))
		return
	}

	if !c.enqueue(data) {
		c.hub.logger.Warn("send buffer full, dropping connection", zap.String("user_id", c.userID))
		go c.hub.drop(c)
	}
}

// WritePump, send channel'ındaki mesajları bağlantıya yazar.
// Channel kapanınca close frame gönderip çıkar.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.writeMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	_ = c.writeMessage(websocket.CloseMessage, nil)
}

func (c *Client) writeMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
