package realtime

import (
	"testing"
	"time"
)

func recvSignal(t *testing.T, sub *Subscription) Signal {
	t.Helper()
	select {
	case sig := <-sub.C():
		return sig
	case <-time.After(time.Second):
		t.Fatalf("no signal on %s", sub.Topic)
		return Signal{}
	}
}

func TestHub_PublishReachesTopicSubscribersOnly(t *testing.T) {
	h := NewHub(4)

	a := h.Subscribe(ForceLogoutTopic("u1"))
	b := h.Subscribe(ForceLogoutTopic("u2"))
	defer h.Unsubscribe(a.ID)
	defer h.Unsubscribe(b.ID)

	h.ForceLogout("u1", "suspended")

	sig := recvSignal(t, a)
	if sig.Event != EventForceLogout || sig.Reason != "suspended" {
		t.Fatalf("unexpected signal: %+v", sig)
	}
	if sig.At.IsZero() {
		t.Fatalf("At should be stamped")
	}

	select {
	case sig := <-b.C():
		t.Fatalf("u2 must not receive u1 signals: %+v", sig)
	default:
	}
}

func TestHub_FullBufferDropsSignal(t *testing.T) {
	h := NewHub(1)

	sub := h.Subscribe(TableTopic("platform_activity"))
	defer h.Unsubscribe(sub.ID)

	// sin consumidor: la segunda señal se descarta, Publish no bloquea
	h.NotifyTableChange("platform_activity")
	h.NotifyTableChange("platform_activity")

	recvSignal(t, sub)
	select {
	case sig := <-sub.C():
		t.Fatalf("second signal should have been dropped: %+v", sig)
	default:
	}
}

func TestHub_UnsubscribeClosesDone(t *testing.T) {
	h := NewHub(0)

	sub := h.Subscribe(TableTopic("audit_logs"))
	if h.Count() != 1 {
		t.Fatalf("count = %d", h.Count())
	}

	h.Unsubscribe(sub.ID)
	if h.Count() != 0 {
		t.Fatalf("count after unsubscribe = %d", h.Count())
	}

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatalf("Done should be closed")
	}

	// publicar después de cerrar no debe panicear
	h.Publish(Signal{Topic: TableTopic("audit_logs"), Event: EventTableChange})
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	h := NewHub(0)
	sub := h.Subscribe("x")

	sub.Close()
	sub.Close()

	select {
	case <-sub.Done():
	default:
		t.Fatalf("Done should be closed")
	}
}
