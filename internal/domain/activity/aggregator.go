package activity

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"instadoc-admin/internal/domain/appointments"
	"instadoc-admin/internal/domain/health"
	"instadoc-admin/internal/platform/logger"
)

// Options acota cuánto trae cada fuente y cómo se pagina el resultado.
type Options struct {
	PageSize      int
	WindowDays    int
	PlatformLimit int
	SourceLimit   int
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = 20
	}
	if o.WindowDays <= 0 {
		o.WindowDays = 7
	}
	if o.PlatformLimit <= 0 {
		o.PlatformLimit = 200
	}
	if o.SourceLimit <= 0 {
		o.SourceLimit = 100
	}
	return o
}

// Aggregator arma el feed unificado: junta acciones de plataforma,
// métricas de salud y turnos en una sola lista ordenada, cacheada en
// memoria. El refresh reemplaza la lista entera de forma atómica, así
// una paginación en curso nunca ve un estado a medias.
type Aggregator struct {
	feed   Repository
	dir    DirectorySource
	health health.Repository
	appts  appointments.Repository
	opts   Options
	log    logger.Logger
	now    func() time.Time

	mu          sync.RWMutex
	items       []Item
	ready       bool
	refreshedAt time.Time
}

func NewAggregator(feed Repository, dir DirectorySource, healthRepo health.Repository, appts appointments.Repository, opts Options, log logger.Logger) *Aggregator {
	return &Aggregator{
		feed:   feed,
		dir:    dir,
		health: healthRepo,
		appts:  appts,
		opts:   opts.withDefaults(),
		log:    log,
		now:    time.Now,
	}
}

// Refresh trae todas las fuentes en paralelo y reconstruye la lista.
// Si cualquier fuente falla, el refresh entero se descarta y la cache
// anterior queda intacta.
func (a *Aggregator) Refresh(ctx context.Context) error {
	since := a.now().UTC().AddDate(0, 0, -a.opts.WindowDays)

	var (
		wg       sync.WaitGroup
		entries  []Entry
		profiles []Profile
		bps      []health.BPLog
		weights  []health.WeightLog
		glucoses []health.GlucoseLog
		appts    []appointments.Appointment

		errMu    sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}

	wg.Add(6)
	go func() {
		defer wg.Done()
		var err error
		if entries, err = a.feed.ListRecent(ctx, a.opts.PlatformLimit); err != nil {
			fail(fmt.Errorf("platform feed: %w", err))
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if profiles, err = a.dir.Directory(ctx); err != nil {
			fail(fmt.Errorf("directory: %w", err))
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if bps, err = a.health.ListBPSince(ctx, since, a.opts.SourceLimit); err != nil {
			fail(fmt.Errorf("bp logs: %w", err))
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if weights, err = a.health.ListWeightSince(ctx, since, a.opts.SourceLimit); err != nil {
			fail(fmt.Errorf("weight logs: %w", err))
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if glucoses, err = a.health.ListGlucoseSince(ctx, since, a.opts.SourceLimit); err != nil {
			fail(fmt.Errorf("glucose logs: %w", err))
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if appts, err = a.appts.ListSince(ctx, since, a.opts.SourceLimit); err != nil {
			fail(fmt.Errorf("appointments: %w", err))
		}
	}()
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}

	dir := BuildDirectory(profiles)
	items := make([]Item, 0, len(entries)+len(bps)+len(weights)+len(glucoses)+len(appts))

	for _, e := range entries {
		// Items que tocan cuentas archivadas se descartan enteros,
		// aunque la descripción siguiera siendo legible.
		if dir.ArchivedID(e.ActorID) || dir.ArchivedID(e.TargetUserID) {
			continue
		}
		items = append(items, Item{
			Kind:        KindPlatform,
			Module:      e.Module,
			Action:      e.Action,
			Icon:        IconFor(KindPlatform, e.Module, e.Action),
			Description: dir.Humanize(e.Description),
			CreatedAt:   e.CreatedAt,
		})
	}
	for _, l := range bps {
		if dir.ArchivedID(l.UserID) {
			continue
		}
		items = append(items, Item{
			Kind:        KindHealth,
			Module:      "health",
			Action:      "bp",
			Icon:        IconFor(KindHealth, "health", "bp"),
			Description: fmt.Sprintf("%s logged blood pressure %d/%d mmHg.", dir.DisplayName(l.UserID), l.Systolic, l.Diastolic),
			CreatedAt:   l.CreatedAt,
		})
	}
	for _, l := range weights {
		if dir.ArchivedID(l.UserID) {
			continue
		}
		items = append(items, Item{
			Kind:        KindHealth,
			Module:      "health",
			Action:      "weight",
			Icon:        IconFor(KindHealth, "health", "weight"),
			Description: fmt.Sprintf("%s logged weight %.1f kg.", dir.DisplayName(l.UserID), l.Kg),
			CreatedAt:   l.CreatedAt,
		})
	}
	for _, l := range glucoses {
		if dir.ArchivedID(l.UserID) {
			continue
		}
		items = append(items, Item{
			Kind:        KindHealth,
			Module:      "health",
			Action:      "glucose",
			Icon:        IconFor(KindHealth, "health", "glucose"),
			Description: fmt.Sprintf("%s logged glucose %d mg/dL.", dir.DisplayName(l.UserID), l.MgDL),
			CreatedAt:   l.CreatedAt,
		})
	}
	for _, ap := range appts {
		if dir.ArchivedID(ap.PatientID) {
			continue
		}
		items = append(items, Item{
			Kind:        KindAppointment,
			Module:      "appointments",
			Action:      "scheduled",
			Icon:        IconFor(KindAppointment, "appointments", "scheduled"),
			Description: fmt.Sprintf("Appointment scheduled: %s with %s.", apName(dir, ap), ap.DoctorName),
			CreatedAt:   ap.CreatedAt,
		})
	}

	// Orden estable: mismo timestamp conserva el orden de inserción.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	a.mu.Lock()
	a.items = items
	a.ready = true
	a.refreshedAt = a.now().UTC()
	a.mu.Unlock()
	return nil
}

func apName(dir *Directory, ap appointments.Appointment) string {
	if ap.PatientID != "" {
		if _, ok := dir.Lookup(ap.PatientID); ok {
			return dir.DisplayName(ap.PatientID)
		}
	}
	if ap.PatientName != "" {
		return ap.PatientName
	}
	return "Unknown"
}

// Page devuelve las primeras n páginas acumuladas (semántica "load more")
// y cuántos items quedan después de eso. La primera llamada dispara un
// refresh sincrónico si la cache está vacía.
func (a *Aggregator) Page(ctx context.Context, n int) ([]Item, int, error) {
	if n <= 0 {
		n = 1
	}

	a.mu.RLock()
	ready := a.ready
	a.mu.RUnlock()

	if !ready {
		if err := a.Refresh(ctx); err != nil {
			return nil, 0, err
		}
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	cut := n * a.opts.PageSize
	if cut > len(a.items) {
		cut = len(a.items)
	}

	out := make([]Item, cut)
	copy(out, a.items[:cut])
	return out, len(a.items) - cut, nil
}

// RefreshedAt devuelve cuándo se reconstruyó la cache por última vez.
func (a *Aggregator) RefreshedAt() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.refreshedAt
}
