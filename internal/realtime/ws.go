package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsMessage es el formato JSON del canal WebSocket.
type wsMessage struct {
	Type   string  `json:"type"`
	Topic  string  `json:"topic,omitempty"`
	SubID  string  `json:"sub_id,omitempty"`
	Signal *Signal `json:"signal,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// WebSocketHandler expone el hub a clientes browser.
// Comandos: {"type":"subscribe","topic":"..."} / {"type":"unsubscribe","sub_id":"..."}.
// Las señales llegan como {"type":"signal", "signal":{...}}.
func (h *Hub) WebSocketHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		var (
			connMu   sync.Mutex
			connSubs = make(map[string]*Subscription)
		)

		// writeMu serializa escrituras al socket (forwarders + acks).
		var writeMu sync.Mutex
		send := func(msg wsMessage) {
			b, _ := json.Marshal(msg)
			writeMu.Lock()
			_ = conn.WriteMessage(websocket.TextMessage, b)
			writeMu.Unlock()
		}

		go func() {
			defer cancel()
			for {
				_, raw, err := conn.ReadMessage()
				if err != nil {
					return
				}

				var cmd wsMessage
				if err := json.Unmarshal(raw, &cmd); err != nil {
					send(wsMessage{Type: "error", Error: "invalid message format"})
					continue
				}

				switch cmd.Type {
				case "subscribe":
					if cmd.Topic == "" {
						send(wsMessage{Type: "error", Error: "topic required"})
						continue
					}
					sub := h.Subscribe(cmd.Topic)
					connMu.Lock()
					connSubs[sub.ID] = sub
					connMu.Unlock()

					send(wsMessage{Type: "subscribed", SubID: sub.ID, Topic: cmd.Topic})
					go h.forward(ctx, sub, send)

				case "unsubscribe":
					connMu.Lock()
					if sub, ok := connSubs[cmd.SubID]; ok {
						delete(connSubs, cmd.SubID)
						h.Unsubscribe(sub.ID)
					}
					connMu.Unlock()
					send(wsMessage{Type: "unsubscribed", SubID: cmd.SubID})

				default:
					send(wsMessage{Type: "error", Error: "unknown command: " + cmd.Type})
				}
			}
		}()

		<-ctx.Done()

		connMu.Lock()
		for _, sub := range connSubs {
			h.Unsubscribe(sub.ID)
		}
		connMu.Unlock()
	}
}

func (h *Hub) forward(ctx context.Context, sub *Subscription, send func(wsMessage)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done():
			return
		case sig, ok := <-sub.C():
			if !ok {
				return
			}
			send(wsMessage{Type: "signal", SubID: sub.ID, Signal: &sig})
		}
	}
}
