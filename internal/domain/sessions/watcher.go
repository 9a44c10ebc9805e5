package sessions

import (
	"context"
	"errors"
	"time"

	"instadoc-admin/internal/domain/accounts"
	"instadoc-admin/internal/realtime"
)

// watcher vigila una única sesión: un tick periódico relee la cuenta y
// una suscripción al hub escucha señales dirigidas. Cualquiera de los
// dos caminos termina la sesión; el primero que llega gana.
type watcher struct {
	sessionID string
	accountID string
	cancel    context.CancelFunc
	done      chan struct{}
}

// startWatcher arranca (o reinicia) el watcher de una sesión.
// Arena de uno: nunca hay dos watchers vivos para la misma sesión.
func (s *Service) startWatcher(sessionID, accountID string) {
	ctx, cancel := context.WithCancel(context.Background())
	w := &watcher{
		sessionID: sessionID,
		accountID: accountID,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	s.mu.Lock()
	if prev, ok := s.watchers[sessionID]; ok {
		prev.cancel()
	}
	s.watchers[sessionID] = w
	s.mu.Unlock()

	sub := s.hub.Subscribe(realtime.ForceLogoutTopic(accountID))
	go s.watch(ctx, w, sub)
}

// stopWatcher es idempotente y no espera al goroutine: solo cancela.
func (s *Service) stopWatcher(sessionID string) {
	s.mu.Lock()
	w, ok := s.watchers[sessionID]
	if ok {
		delete(s.watchers, sessionID)
	}
	s.mu.Unlock()

	if ok {
		w.cancel()
	}
}

func (s *Service) watch(ctx context.Context, w *watcher, sub *realtime.Subscription) {
	defer close(w.done)
	defer s.hub.Unsubscribe(sub.ID)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-sub.Done():
			return

		case sig := <-sub.C():
			// Señal dirigida: revoca sin esperar el próximo tick.
			if sig.Event != realtime.EventForceLogout {
				continue
			}
			s.expire(w, sig.Reason)
			return

		case <-ticker.C:
			a, err := s.accounts.GetByID(ctx, w.accountID)
			if err != nil {
				if errors.Is(err, accounts.ErrNotFound) {
					s.expire(w, "account missing")
					return
				}
				// Error transitorio (DB caída, timeout): no desloguea a nadie,
				// se reintenta en el próximo tick.
				s.log.Debug("session watcher check failed", map[string]any{
					"err":        err.Error(),
					"session_id": w.sessionID,
				})
				continue
			}
			if accounts.AdminSessionBlocked(a, s.policy) {
				s.expire(w, blockReason(a))
				return
			}
		}
	}
}

// expire termina la sesión desde adentro del watcher: se saca del
// registro a sí mismo y revoca. No pasa por stopWatcher para no
// cancelarse mientras corre.
func (s *Service) expire(w *watcher, reason string) {
	s.mu.Lock()
	if cur, ok := s.watchers[w.sessionID]; ok && cur == w {
		delete(s.watchers, w.sessionID)
	}
	s.mu.Unlock()

	if err := s.revoke(context.Background(), w.sessionID, reason); err != nil {
		s.log.Warn("session revoke failed", map[string]any{
			"err":        err.Error(),
			"session_id": w.sessionID,
		})
	}
}

func blockReason(a accounts.Account) string {
	switch {
	case a.Archived():
		return "archived"
	case a.Status == accounts.StatusSuspended:
		return "suspended"
	case a.Status == accounts.StatusInactive:
		return "deactivated"
	default:
		return "role changed"
	}
}
