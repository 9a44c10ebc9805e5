package realtime

import (
	"fmt"
	"sync"
	"time"
)

// Topics soportados:
// - force-logout:<accountID>  señales de cierre de sesión dirigidas
// - table:<nombre>            notificaciones de cambio por tabla
func ForceLogoutTopic(accountID string) string { return "force-logout:" + accountID }
func TableTopic(table string) string           { return "table:" + table }

// Signal es el mensaje fire-and-forget del bus.
// Sin persistencia ni replay: quien no está suscrito al publicar, no lo recibe.
type Signal struct {
	Topic  string    `json:"topic"`
	Event  string    `json:"event"`
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}

const (
	EventForceLogout  = "force_logout"
	EventSessionEnded = "session_ended"
	EventTableChange  = "table_change"
)

// Subscription es una suscripción viva a un topic.
type Subscription struct {
	ID    string
	Topic string

	ch     chan Signal
	done   chan struct{}
	mu     sync.Mutex
	closed bool
}

// C devuelve el canal de señales.
func (s *Subscription) C() <-chan Signal { return s.ch }

// Done se cierra cuando la suscripción termina.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Close es idempotente. El canal de señales no se cierra nunca:
// los consumidores salen por Done(), así Publish jamás escribe
// sobre un canal cerrado.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
}

// Hub es el bus pub/sub en memoria del proceso.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*Subscription
	nextID uint64
	buffer int
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		subs:   make(map[string]*Subscription),
		buffer: buffer,
	}
}

func (h *Hub) Subscribe(topic string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		ID:    fmt.Sprintf("sub-%d", h.nextID),
		Topic: topic,
		ch:    make(chan Signal, h.buffer),
		done:  make(chan struct{}),
	}
	h.subs[sub.ID] = sub
	return sub
}

func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	h.mu.Unlock()

	if ok {
		sub.Close()
	}
}

// Publish entrega a todos los suscriptores del topic.
// Entrega at-most-once: si el buffer de un suscriptor está lleno, se descarta.
func (h *Hub) Publish(sig Signal) {
	if sig.At.IsZero() {
		sig.At = time.Now()
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs {
		if sub.Topic != sig.Topic {
			continue
		}
		select {
		case sub.ch <- sig:
		default:
			// buffer lleno, se pierde la señal; el watcher es el fallback
		}
	}
}

// ForceLogout publica la señal de logout para una cuenta.
func (h *Hub) ForceLogout(accountID, reason string) {
	h.Publish(Signal{
		Topic:  ForceLogoutTopic(accountID),
		Event:  EventForceLogout,
		Reason: reason,
	})
}

// NotifyTableChange publica un cambio sobre una tabla lógica.
func (h *Hub) NotifyTableChange(table string) {
	h.Publish(Signal{
		Topic: TableTopic(table),
		Event: EventTableChange,
	})
}

// Count devuelve el número de suscripciones activas.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
