package router

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"instadoc-admin/internal/adapters/auth/medid"
	mem "instadoc-admin/internal/adapters/storage/memory"
	pg "instadoc-admin/internal/adapters/storage/postgres"
	"instadoc-admin/internal/domain/accounts"
	"instadoc-admin/internal/domain/activity"
	"instadoc-admin/internal/domain/appointments"
	"instadoc-admin/internal/domain/assignments"
	"instadoc-admin/internal/domain/audit"
	"instadoc-admin/internal/domain/health"
	"instadoc-admin/internal/domain/loginlogs"
	"instadoc-admin/internal/domain/sessions"
	"instadoc-admin/internal/domain/stats"
	"instadoc-admin/internal/domain/tickets"
	"instadoc-admin/internal/middleware"
	"instadoc-admin/internal/platform/config"
	"instadoc-admin/internal/platform/logger"
	"instadoc-admin/internal/ports/auth"
	"instadoc-admin/internal/realtime"
)

type Options struct {
	Config config.Config
	Log    logger.Logger

	// Opcional: si viene, usa esta conexión. Si no, decide por Config.DB.DSN
	// (DSN vacío => repos in-memory, modo dev).
	DB *sql.DB
}

// Repos agrupa los repositorios ya construidos; los tests e2e los usan
// para sembrar datos sin pasar por la API.
type Repos struct {
	Accounts     accounts.Repository
	Sessions     sessions.Repository
	Audit        audit.Repository
	Activity     activity.Repository
	LoginLogs    loginlogs.Repository
	Health       health.Repository
	Appointments appointments.Repository
	Tickets      tickets.Repository
	Assignments  assignments.Repository
}

// App es el servicio armado: handler HTTP más los componentes con
// ciclo de vida propio (watchers, refresher, conexión a DB).
type App struct {
	Handler http.Handler

	Hub       *realtime.Hub
	Sessions  *sessions.Service
	Refresher *activity.Refresher
	Repos     Repos

	db  *sql.DB
	log logger.Logger
}

// Close apaga los componentes de fondo. Idempotente no es: se llama
// una vez en el shutdown del proceso.
func (a *App) Close() {
	a.Refresher.Stop()
	a.Sessions.StopAll()
	if a.db != nil {
		_ = a.db.Close()
	}
}

func New(opts Options) (*App, error) {
	cfg := opts.Config
	log := opts.Log
	if log == nil {
		log = logger.New(logger.Options{Level: logger.Info, App: "instadoc-admin"})
	}

	db := opts.DB
	if db == nil && cfg.DB.DSN != "" {
		opened, err := pg.Open(cfg.DB.DSN)
		if err != nil {
			return nil, err
		}
		db = opened
	}

	var repos Repos
	if db != nil {
		repos = Repos{
			Accounts:     pg.NewAccountsRepo(db),
			Sessions:     pg.NewSessionsRepo(db),
			Audit:        pg.NewAuditRepo(db),
			Activity:     pg.NewActivityRepo(db),
			LoginLogs:    pg.NewLoginLogsRepo(db),
			Health:       pg.NewHealthRepo(db),
			Appointments: pg.NewAppointmentsRepo(db),
			Tickets:      pg.NewTicketsRepo(db),
			Assignments:  pg.NewAssignmentsRepo(db),
		}
	} else {
		repos = Repos{
			Accounts:     mem.NewAccountsRepo(),
			Sessions:     mem.NewSessionsRepo(),
			Audit:        mem.NewAuditRepo(),
			Activity:     mem.NewActivityRepo(),
			LoginLogs:    mem.NewLoginLogsRepo(),
			Health:       mem.NewHealthRepo(),
			Appointments: mem.NewAppointmentsRepo(),
			Tickets:      mem.NewTicketsRepo(),
			Assignments:  mem.NewAssignmentsRepo(),
		}
	}

	hub := realtime.NewHub(0)
	auditLogger := audit.NewLogger(repos.Audit, repos.Activity, hub, log)

	// Revocación dura contra MedID solo si está configurado; si no,
	// el force-logout local alcanza.
	var revoker auth.SessionRevoker
	if cfg.Medid.BaseURL != "" {
		client, err := medid.NewClient(medid.Config{
			BaseURL:      cfg.Medid.BaseURL,
			APIKey:       cfg.Medid.APIKey,
			APIKeyHeader: cfg.Medid.APIKeyHeader,
			Timeout:      cfg.Medid.Timeout,
		})
		if err != nil {
			return nil, err
		}
		if client.IsConfigured() {
			revoker = client
		}
	}

	policy := accounts.BlockPolicy{InactiveBlocks: cfg.Session.InactiveBlocks}

	accountsSvc := accounts.NewService(repos.Accounts, auditLogger, hub, revoker, policy, log)

	tokens := sessions.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenExpiry)
	loginsSvc := loginlogs.NewService(repos.LoginLogs, repos.Accounts, log)
	sessionsSvc := sessions.NewService(
		repos.Accounts, repos.Sessions, tokens, hub, loginsSvc,
		policy, cfg.Session.WatchInterval, log,
	)

	healthSvc := health.NewService(repos.Health, repos.Accounts, cfg.Feed.WindowDays, cfg.Feed.SourceLimit)
	apptsSvc := appointments.NewService(repos.Appointments, cfg.Feed.WindowDays, cfg.Feed.SourceLimit)
	ticketsSvc := tickets.NewService(repos.Tickets, auditLogger, repos.Activity, hub, log)
	assignSvc := assignments.NewService(repos.Assignments, repos.Accounts, auditLogger)
	statsSvc := stats.NewService(repos.Accounts, repos.Health, repos.Tickets, repos.Appointments, time.Local)

	agg := activity.NewAggregator(repos.Activity, accountsSvc, repos.Health, repos.Appointments, activity.Options{
		PageSize:      cfg.Feed.PageSize,
		WindowDays:    cfg.Feed.WindowDays,
		PlatformLimit: cfg.Feed.PlatformLimit,
		SourceLimit:   cfg.Feed.SourceLimit,
	}, log)
	refresher := activity.NewRefresher(agg, hub, cfg.Feed.RefreshInterval)
	refresher.Start()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AuthContext(sessionsSvc))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	sessions.RegisterRoutes(r, sessionsSvc)
	r.Get("/ws", hub.WebSocketHandler())

	// Todo lo demás es superficie admin: guard por cuenta, no por token.
	r.Group(func(ar chi.Router) {
		ar.Use(middleware.RequireAdmin(accountsSvc.CheckAdmin))

		accounts.RegisterRoutes(ar, accountsSvc)
		tickets.RegisterRoutes(ar, ticketsSvc, accountsSvc)
		assignments.RegisterRoutes(ar, assignSvc, accountsSvc)
		activity.RegisterRoutes(ar, agg)
		health.RegisterRoutes(ar, healthSvc)
		appointments.RegisterRoutes(ar, apptsSvc)
		loginlogs.RegisterRoutes(ar, loginsSvc)
		audit.RegisterRoutes(ar, repos.Audit)
		stats.RegisterRoutes(ar, statsSvc)
	})

	app := &App{
		Handler:   r,
		Hub:       hub,
		Sessions:  sessionsSvc,
		Refresher: refresher,
		Repos:     repos,
		log:       log,
	}
	// Solo cerramos la conexión si la abrimos nosotros.
	if opts.DB == nil {
		app.db = db
	}
	return app, nil
}
