package websocket

import (
	"net/http"
	"time"

	"econledger/realtime"
	gorillaws "github.com/gorilla/websocket"
)

const (
	writeTimeout = 5 * time.Second
	// maxDrops is how far behind a client may fall before it is hung up.
	maxDrops = 64
)

// Handler returns an http.Handler that upgrades to WebSocket and streams
// committed transactions from the hub. Clients that cannot keep up accumulate
// drops on their subscription and are closed with a policy-violation frame
// rather than stalling the hub.
func Handler(hub *realtime.Hub) http.Handler {
	upgrader := gorillaws.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		sub := hub.Subscribe(256)
		defer hub.Unsubscribe(sub.ID)

		for tx := range sub.C {
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(gorillaws.TextMessage, realtime.MarshalJSON(tx)); err != nil {
				return
			}
			if sub.Dropped() > maxDrops {
				closeWith(conn, gorillaws.ClosePolicyViolation, "subscriber too slow")
				return
			}
		}
		// hub closed the subscription; say goodbye properly
		closeWith(conn, gorillaws.CloseGoingAway, "")
	})
}

func closeWith(conn *gorillaws.Conn, code int, reason string) {
	msg := gorillaws.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(gorillaws.CloseMessage, msg, time.Now().Add(time.Second))
}
