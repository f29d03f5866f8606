package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akinalp/mygames/models"
)

type fakeValidator struct{}

func (fakeValidator) ValidateAccessToken(token string) (*models.TokenClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &models.TokenClaims{
		Email:            "ada@example.com",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}, nil
}

func startServer(t *testing.T) (*Hub, string) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(zap.NewNop())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(NewHandler(hub, fakeValidator{}, nil).HandleConnection))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})

	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestHandler_RejectsBadToken(t *testing.T) {
	_, url := startServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(url+"?token=nope", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestHub_ReadyHeartbeatAndBroadcast(t *testing.T) {
	hub, url := startServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?token=good", nil)
	require.NoError(t, err)
	defer conn.Close()

	ready := readEvent(t, conn)
	assert.Equal(t, OpReady, ready.Op)

	require.NoError(t, conn.WriteJSON(Event{Op: OpHeartbeat}))
	assert.Equal(t, OpHeartbeatAck, readEvent(t, conn).Op)

	require.Eventually(t, func() bool { return hub.ConnectionCount("user-1") == 1 }, time.Second, 10*time.Millisecond)

	hub.BroadcastToUser("user-1", Event{Op: OpSessionRevoked, Data: SessionRevokedData{Reason: RevokeReasonTokenReuse}})
	ev := readEvent(t, conn)
	assert.Equal(t, OpSessionRevoked, ev.Op)
	assert.Positive(t, ev.Seq)

	data, ok := ev.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, RevokeReasonTokenReuse, data["reason"])
}

func TestHub_BroadcastReachesEveryTab(t *testing.T) {
	hub, url := startServer(t)

	var conns []*websocket.Conn
	for range 2 {
		conn, _, err := websocket.DefaultDialer.Dial(url+"?token=good", nil)
		require.NoError(t, err)
		defer conn.Close()
		readEvent(t, conn) // ready
		conns = append(conns, conn)
	}
	require.Eventually(t, func() bool { return hub.ConnectionCount("user-1") == 2 }, time.Second, 10*time.Millisecond)

	hub.BroadcastToUser("user-1", Event{Op: OpMatchUpdate})
	hub.BroadcastToUser("someone-else", Event{Op: OpMatchUpdate})

	for _, conn := range conns {
		assert.Equal(t, OpMatchUpdate, readEvent(t, conn).Op)
	}
}

func TestClient_SendAfterHubClosedChannel(t *testing.T) {
	hub := NewHub(zap.NewNop())

	// slow-client drop: hub send'i kapatır, ReadPump hâlâ heartbeat'e cevap yazabilir
	dropped := &Client{hub: hub, userID: "user-1", send: make(chan []byte, sendBufferSize)}
	hub.addClient(dropped)
	hub.removeClient(dropped)
	assert.NotPanics(t, func() { dropped.sendEvent(Event{Op: OpHeartbeatAck}) })
	assert.NotPanics(t, func() { dropped.closeSend() })

	_, open := <-dropped.send
	assert.False(t, open)

	// graceful shutdown
	tab := &Client{hub: hub, userID: "user-2", send: make(chan []byte, sendBufferSize)}
	hub.addClient(tab)
	hub.Shutdown()
	assert.NotPanics(t, func() {
		tab.sendEvent(Event{Op: OpHeartbeatAck})
		hub.BroadcastToUser("user-2", Event{Op: OpMatchUpdate})
	})
	assert.Zero(t, hub.ConnectionCount("user-2"))
}

func TestClient_EnqueueReportsFullBuffer(t *testing.T) {
	c := &Client{hub: NewHub(zap.NewNop()), userID: "user-1", send: make(chan []byte, 1)}

	assert.True(t, c.enqueue([]byte("a")))
	assert.False(t, c.enqueue([]byte("b")))

	c.closeSend()
	assert.True(t, c.enqueue([]byte("c")), "closed client swallows messages")
}
