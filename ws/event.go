// Package ws, WebSocket bağlantılarını ve gerçek zamanlı olay yayınını yönetir.
//
// Bir kullanıcı birden fazla sekmede açık olabilir; hub her kullanıcı için
// bir client kümesi tutar ve olayları o kullanıcının tüm sekmelerine iletir.
//
// Protokol formatı:
//
//	{ "op": "match_update", "d": {...}, "seq": 42 }
package ws

// Event, WebSocket üzerinden gönderilen/alınan mesajın standart formatı.
//
// Data `json:"d"` ile kısaltılır: her mesajda tekrarlanan alan adı küçük tutulur.
// Seq, client'ın kaçırılmış olayları fark edebilmesi için monoton artan sayaçtır.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// Client → Server
const (
	OpHeartbeat = "heartbeat" // Client her 30sn'de gönderir
)

// Server → Client
const (
	OpReady          = "ready"           // Bağlantı kurulduğunda ilk gönderilen
	OpHeartbeatAck   = "heartbeat_ack"   // Heartbeat'e yanıt
	OpMatchUpdate    = "match_update"    // Maç state'i değişti (başlat, tur bitti, sonraki tur, rematch, bitir)
	OpMatchComplete  = "match_complete"  // Maç tamamlandı, MatchRecord ile birlikte
	OpSessionRevoked = "session_revoked" // Kullanıcının refresh token'ları toplu revoke edildi
)

// ReadyData, OpReady ile gönderilen bağlantı bilgisi.
type ReadyData struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// SessionRevokedData, OpSessionRevoked payload'ı.
// Reason: "token_reuse", "password_reset" veya "deactivated".
type SessionRevokedData struct {
	Reason string `json:"reason"`
}

// Revocation reason'ları.
const (
	RevokeReasonTokenReuse    = "token_reuse"
	RevokeReasonPasswordReset = "password_reset"
	RevokeReasonDeactivated   = "deactivated"
)
