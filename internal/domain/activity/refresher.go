package activity

import (
	"context"
	"sync"
	"time"

	"instadoc-admin/internal/realtime"
)

// Refresher reconstruye el feed en segundo plano: un tick periódico
// (refresh silencioso) más la señal de cambio de tabla del hub para
// reaccionar al instante a escrituras propias. Un refresh fallido
// deja la cache anterior como estaba.
type Refresher struct {
	agg      *Aggregator
	hub      *realtime.Hub
	interval time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

func NewRefresher(agg *Aggregator, hub *realtime.Hub, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Refresher{
		agg:      agg,
		hub:      hub,
		interval: interval,
	}
}

// Start es idempotente: un segundo Start con el refresher corriendo es no-op.
func (r *Refresher) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running = true

	var sub *realtime.Subscription
	if r.hub != nil {
		sub = r.hub.Subscribe(realtime.TableTopic(TableName))
	}
	go r.run(ctx, sub, r.done)
}

// Stop es idempotente y espera a que el loop termine.
func (r *Refresher) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	cancel := r.cancel
	done := r.done
	r.mu.Unlock()

	cancel()
	<-done
}

func (r *Refresher) run(ctx context.Context, sub *realtime.Subscription, done chan struct{}) {
	defer close(done)
	if sub != nil {
		defer r.hub.Unsubscribe(sub.ID)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	var sigC <-chan realtime.Signal
	if sub != nil {
		sigC = sub.C()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh(ctx)
		case <-sigC:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	if err := r.agg.Refresh(ctx); err != nil {
		r.agg.log.Warn("feed refresh failed", map[string]any{"err": err.Error()})
	}
}
