package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"instadoc-admin/internal/domain/activity"
	"instadoc-admin/internal/platform/logger"
)

type testAuditRepo struct {
	mu      sync.Mutex
	entries []Entry
	fail    bool
}

func (r *testAuditRepo) Insert(ctx context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("audit table down")
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *testAuditRepo) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries, nil
}

type testFeedRepo struct {
	mu      sync.Mutex
	entries []activity.Entry
	fail    bool
}

func (r *testFeedRepo) Insert(ctx context.Context, e activity.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("feed table down")
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *testFeedRepo) ListRecent(ctx context.Context, limit int) ([]activity.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries, nil
}

type testNotifier struct {
	mu     sync.Mutex
	tables []string
}

func (n *testNotifier) NotifyTableChange(table string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tables = append(n.tables, table)
}

func newTestLogger(audits *testAuditRepo, feed *testFeedRepo, notifier *testNotifier) *Logger {
	l := NewLogger(audits, feed, notifier, logger.New(logger.Options{Level: logger.Error}))
	l.now = func() time.Time { return time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC) }
	return l
}

func TestLogger_Record_WritesBothDestinations(t *testing.T) {
	audits := &testAuditRepo{}
	feed := &testFeedRepo{}
	notifier := &testNotifier{}
	l := newTestLogger(audits, feed, notifier)

	l.Record(context.Background(), Input{
		Actor:        Actor{ID: "admin-1", Name: "Root"},
		TargetUserID: "u1",
		Module:       "users",
		Action:       "suspended",
		Description:  "Root suspended Ana.",
		Reason:       "abuse",
	})

	if len(audits.entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(audits.entries))
	}
	e := audits.entries[0]
	if e.AdminID != "admin-1" || e.Module != "users" || e.Action != "suspended" || e.Reason != "abuse" {
		t.Fatalf("unexpected audit entry: %+v", e)
	}
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Fatalf("entry missing id/timestamp: %+v", e)
	}

	if len(feed.entries) != 1 {
		t.Fatalf("expected 1 feed entry, got %d", len(feed.entries))
	}
	f := feed.entries[0]
	if f.Description != "Root suspended Ana." || f.ActorID != "admin-1" || f.TargetUserID != "u1" {
		t.Fatalf("unexpected feed entry: %+v", f)
	}
	if f.ID == e.ID {
		t.Fatalf("feed and audit rows must have independent ids")
	}

	if len(notifier.tables) != 1 || notifier.tables[0] != activity.TableName {
		t.Fatalf("expected table notification, got %v", notifier.tables)
	}
}

func TestLogger_Record_FeedFailureDoesNotBlockAudit(t *testing.T) {
	audits := &testAuditRepo{}
	feed := &testFeedRepo{fail: true}
	notifier := &testNotifier{}
	l := newTestLogger(audits, feed, notifier)

	l.Record(context.Background(), Input{
		Actor:  Actor{ID: "admin-1", Name: "Root"},
		Module: "users",
		Action: "created",
	})

	if len(audits.entries) != 1 {
		t.Fatalf("audit write must survive feed failure, got %d", len(audits.entries))
	}
	if len(notifier.tables) != 0 {
		t.Fatalf("no notification on failed feed insert, got %v", notifier.tables)
	}
}

func TestLogger_Record_AuditFailureDoesNotBlockFeed(t *testing.T) {
	audits := &testAuditRepo{fail: true}
	feed := &testFeedRepo{}
	notifier := &testNotifier{}
	l := newTestLogger(audits, feed, notifier)

	l.Record(context.Background(), Input{
		Actor:  Actor{ID: "admin-1", Name: "Root"},
		Module: "tickets",
		Action: "resolved",
	})

	if len(feed.entries) != 1 {
		t.Fatalf("feed write must survive audit failure, got %d", len(feed.entries))
	}
	if len(notifier.tables) != 1 {
		t.Fatalf("notification still fires, got %v", notifier.tables)
	}
}

func TestLogger_Record_NilNotifier(t *testing.T) {
	audits := &testAuditRepo{}
	feed := &testFeedRepo{}
	l := NewLogger(audits, feed, nil, logger.New(logger.Options{Level: logger.Error}))

	// no debe entrar en pánico sin notifier
	l.Record(context.Background(), Input{
		Actor:  Actor{ID: "admin-1", Name: "Root"},
		Module: "users",
		Action: "created",
	})
	if len(audits.entries) != 1 || len(feed.entries) != 1 {
		t.Fatalf("expected both writes, got %d/%d", len(audits.entries), len(feed.entries))
	}
}
