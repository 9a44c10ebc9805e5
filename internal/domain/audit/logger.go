package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"instadoc-admin/internal/domain/activity"
	"instadoc-admin/internal/platform/logger"
)

// TableNotifier avisa al bus realtime que una tabla cambió.
type TableNotifier interface {
	NotifyTableChange(table string)
}

// Logger escribe cada acción admin en dos destinos: el audit log
// estructurado y el feed de plataforma. Ambas escrituras son
// independientes y best-effort; la falla de una no frena la otra
// ni la operación que originó el registro.
type Logger struct {
	audits  Repository
	feed    activity.Repository
	changes TableNotifier
	log     logger.Logger
	now     func() time.Time
}

func NewLogger(audits Repository, feed activity.Repository, changes TableNotifier, log logger.Logger) *Logger {
	return &Logger{
		audits:  audits,
		feed:    feed,
		changes: changes,
		log:     log,
		now:     time.Now,
	}
}

func (l *Logger) Record(ctx context.Context, in Input) {
	now := l.now().UTC()

	entry := Entry{
		ID:           uuid.NewString(),
		AdminID:      in.Actor.ID,
		TargetUserID: in.TargetUserID,
		Module:       in.Module,
		Action:       in.Action,
		Description:  in.Description,
		Reason:       in.Reason,
		CreatedAt:    now,
	}
	feedEntry := activity.Entry{
		ID:           uuid.NewString(),
		ActorID:      in.Actor.ID,
		TargetUserID: in.TargetUserID,
		Module:       in.Module,
		Action:       in.Action,
		Description:  in.Description,
		CreatedAt:    now,
	}

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := l.audits.Insert(ctx, entry); err != nil {
			l.log.Warn("audit insert failed", map[string]any{
				"err":    err.Error(),
				"module": in.Module,
				"action": in.Action,
			})
		}
	}()

	go func() {
		defer wg.Done()
		if err := l.feed.Insert(ctx, feedEntry); err != nil {
			l.log.Warn("feed insert failed", map[string]any{
				"err":    err.Error(),
				"module": in.Module,
				"action": in.Action,
			})
			return
		}
		if l.changes != nil {
			l.changes.NotifyTableChange(activity.TableName)
		}
	}()

	wg.Wait()
}
