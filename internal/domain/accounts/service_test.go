package accounts

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"instadoc-admin/internal/domain/audit"
	"instadoc-admin/internal/platform/logger"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	mu   sync.Mutex
	byID map[string]Account
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Account{}}
}

func (r *testRepo) Create(ctx context.Context, a Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[a.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) Update(ctx context.Context, a Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[a.ID]; !ok {
		return ErrNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return Account{}, ErrNotFound
	}
	return a, nil
}

func (r *testRepo) GetByEmail(ctx context.Context, email string) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Email == email {
			return a, nil
		}
	}
	return Account{}, ErrNotFound
}

func (r *testRepo) List(ctx context.Context) ([]Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Account, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	return out, nil
}

func (r *testRepo) ListByRole(ctx context.Context, role Role) ([]Account, error) {
	all, _ := r.List(ctx)
	out := make([]Account, 0)
	for _, a := range all {
		if a.Role == role {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testRepo) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID), nil
}

func (r *testRepo) ListCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]time.Time, 0)
	for _, a := range r.byID {
		if !a.CreatedAt.Before(since) {
			out = append(out, a.CreatedAt)
		}
	}
	return out, nil
}

// -------------------------
// Collaborator fakes
// -------------------------

type testSignals struct {
	mu    sync.Mutex
	calls []string // "accountID/reason"
}

func (s *testSignals) ForceLogout(accountID, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, accountID+"/"+reason)
}

type testRecorder struct {
	mu     sync.Mutex
	inputs []audit.Input
}

func (r *testRecorder) Record(ctx context.Context, in audit.Input) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, in)
}

type testRevoker struct {
	mu       sync.Mutex
	accounts []string
	fail     bool
}

func (r *testRevoker) RevokeSessions(ctx context.Context, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("idp unavailable")
	}
	r.accounts = append(r.accounts, accountID)
	return nil
}

func newTestService(policy BlockPolicy) (*Service, *testRepo, *testSignals, *testRecorder, *testRevoker) {
	repo := newTestRepo()
	signals := &testSignals{}
	rec := &testRecorder{}
	rev := &testRevoker{}
	log := logger.New(logger.Options{Level: logger.Error})
	svc := NewService(repo, rec, signals, rev, policy, log)
	return svc, repo, signals, rec, rev
}

func seedAccount(t *testing.T, repo *testRepo, a Account) Account {
	t.Helper()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	}
	if a.Status == "" {
		a.Status = StatusActive
	}
	if err := repo.Create(context.Background(), a); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return a
}

// -------------------------
// Tests
// -------------------------

func TestAdminSessionBlocked(t *testing.T) {
	del := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		acc     Account
		policy  BlockPolicy
		blocked bool
	}{
		{"active admin passes", Account{Role: RoleAdmin, Status: StatusActive}, BlockPolicy{InactiveBlocks: true}, false},
		{"archived dominates everything", Account{Role: RoleAdmin, Status: StatusActive, DeletedAt: &del}, BlockPolicy{}, true},
		{"suspended always blocks", Account{Role: RoleAdmin, Status: StatusSuspended}, BlockPolicy{}, true},
		{"inactive blocks when policy on", Account{Role: RoleAdmin, Status: StatusInactive}, BlockPolicy{InactiveBlocks: true}, true},
		{"inactive passes when policy off", Account{Role: RoleAdmin, Status: StatusInactive}, BlockPolicy{InactiveBlocks: false}, false},
		{"patient role blocks", Account{Role: RolePatient, Status: StatusActive}, BlockPolicy{}, true},
		{"doctor role blocks", Account{Role: RoleDoctor, Status: StatusActive}, BlockPolicy{}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AdminSessionBlocked(tc.acc, tc.policy); got != tc.blocked {
				t.Fatalf("blocked=%v, want %v", got, tc.blocked)
			}
		})
	}
}

func TestService_Create_HashesPasswordAndAudits(t *testing.T) {
	svc, repo, _, rec, _ := newTestService(BlockPolicy{InactiveBlocks: true})
	actor := audit.Actor{ID: "admin-1", Name: "Root Admin"}

	a, err := svc.Create(context.Background(), actor, CreateInput{
		FullName: "Lucía Gómez",
		Email:    "Lucia@Example.com",
		Password: "super-secret",
		Role:     RolePatient,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if a.Email != "lucia@example.com" {
		t.Fatalf("expected normalized email, got %q", a.Email)
	}
	if a.PasswordHash == "super-secret" || a.PasswordHash == "" {
		t.Fatalf("password not hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte("super-secret")); err != nil {
		t.Fatalf("hash does not verify: %v", err)
	}

	stored, err := repo.GetByID(context.Background(), a.ID)
	if err != nil || stored.Status != StatusActive {
		t.Fatalf("expected stored active account, got %+v err=%v", stored, err)
	}

	if len(rec.inputs) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(rec.inputs))
	}
	in := rec.inputs[0]
	if in.Module != "users" || in.Action != "created" {
		t.Fatalf("unexpected audit record: %+v", in)
	}
	if !strings.Contains(in.Description, "Lucía Gómez") {
		t.Fatalf("description should use display name, got %q", in.Description)
	}
}

func TestService_Create_RejectsDuplicateEmail(t *testing.T) {
	svc, repo, _, _, _ := newTestService(BlockPolicy{})
	seedAccount(t, repo, Account{ID: "u1", Email: "dup@example.com", Role: RolePatient})

	_, err := svc.Create(context.Background(), audit.Actor{ID: "admin-1", Name: "Root"}, CreateInput{
		Email:    "dup@example.com",
		Password: "super-secret",
		Role:     RolePatient,
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestService_ChangeStatus_SelfProtection(t *testing.T) {
	svc, repo, signals, _, _ := newTestService(BlockPolicy{InactiveBlocks: true})
	seedAccount(t, repo, Account{ID: "admin-1", Email: "a@x.com", Role: RoleAdmin})

	_, err := svc.ChangeStatus(context.Background(), audit.Actor{ID: "admin-1", Name: "Root"}, "admin-1", StatusSuspended, "")
	if !errors.Is(err, ErrSelfChange) {
		t.Fatalf("expected ErrSelfChange, got %v", err)
	}
	if len(signals.calls) != 0 {
		t.Fatalf("no signal expected, got %v", signals.calls)
	}
}

func TestService_ChangeStatus_SuspendSignalsAndRevokes(t *testing.T) {
	svc, repo, signals, rec, rev := newTestService(BlockPolicy{InactiveBlocks: true})
	seedAccount(t, repo, Account{ID: "u1", FullName: "Target", Email: "t@x.com", Role: RoleAdmin})

	a, err := svc.ChangeStatus(context.Background(), audit.Actor{ID: "admin-1", Name: "Root"}, "u1", StatusSuspended, "abuse")
	if err != nil {
		t.Fatalf("ChangeStatus error: %v", err)
	}
	if a.Status != StatusSuspended {
		t.Fatalf("expected suspended, got %s", a.Status)
	}

	if len(signals.calls) != 1 || signals.calls[0] != "u1/suspended" {
		t.Fatalf("expected force-logout u1/suspended, got %v", signals.calls)
	}
	if len(rev.accounts) != 1 || rev.accounts[0] != "u1" {
		t.Fatalf("expected idp revoke for u1, got %v", rev.accounts)
	}
	if len(rec.inputs) != 1 || rec.inputs[0].Reason != "abuse" {
		t.Fatalf("expected audited reason, got %+v", rec.inputs)
	}
}

func TestService_ChangeStatus_InactiveRespectsPolicy(t *testing.T) {
	// policy off: inactive es soft block, no mata la sesión en vivo
	svc, repo, signals, _, _ := newTestService(BlockPolicy{InactiveBlocks: false})
	seedAccount(t, repo, Account{ID: "u1", Email: "t@x.com", Role: RoleAdmin})

	if _, err := svc.ChangeStatus(context.Background(), audit.Actor{ID: "admin-1", Name: "Root"}, "u1", StatusInactive, ""); err != nil {
		t.Fatalf("ChangeStatus error: %v", err)
	}
	if len(signals.calls) != 0 {
		t.Fatalf("expected no signal with policy off, got %v", signals.calls)
	}

	// policy on: sí emite
	svc2, repo2, signals2, _, _ := newTestService(BlockPolicy{InactiveBlocks: true})
	seedAccount(t, repo2, Account{ID: "u2", Email: "t2@x.com", Role: RoleAdmin})

	if _, err := svc2.ChangeStatus(context.Background(), audit.Actor{ID: "admin-1", Name: "Root"}, "u2", StatusInactive, ""); err != nil {
		t.Fatalf("ChangeStatus error: %v", err)
	}
	if len(signals2.calls) != 1 || signals2.calls[0] != "u2/deactivated" {
		t.Fatalf("expected u2/deactivated, got %v", signals2.calls)
	}
}

func TestService_ChangeStatus_RevokerFailureDoesNotAbort(t *testing.T) {
	svc, repo, signals, _, rev := newTestService(BlockPolicy{InactiveBlocks: true})
	rev.fail = true
	seedAccount(t, repo, Account{ID: "u1", Email: "t@x.com", Role: RoleAdmin})

	a, err := svc.ChangeStatus(context.Background(), audit.Actor{ID: "admin-1", Name: "Root"}, "u1", StatusSuspended, "")
	if err != nil {
		t.Fatalf("revoker failure should be silent, got %v", err)
	}
	if a.Status != StatusSuspended {
		t.Fatalf("expected suspended, got %s", a.Status)
	}
	if len(signals.calls) != 1 {
		t.Fatalf("expected force-logout regardless of revoker, got %v", signals.calls)
	}
}

func TestService_Archive_SoftDeletesAndIsIdempotent(t *testing.T) {
	svc, repo, signals, rec, _ := newTestService(BlockPolicy{})
	seedAccount(t, repo, Account{ID: "u1", FullName: "Target", Email: "t@x.com", Role: RoleAdmin})

	a, err := svc.Archive(context.Background(), audit.Actor{ID: "admin-1", Name: "Root"}, "u1", "cleanup")
	if err != nil {
		t.Fatalf("Archive error: %v", err)
	}
	if !a.Archived() || a.EffectiveStatus() != StatusArchived {
		t.Fatalf("expected archived account, got %+v", a)
	}
	if len(signals.calls) != 1 || signals.calls[0] != "u1/archived" {
		t.Fatalf("expected u1/archived, got %v", signals.calls)
	}

	// segunda vez: no-op, sin señal ni audit nuevo
	if _, err := svc.Archive(context.Background(), audit.Actor{ID: "admin-1", Name: "Root"}, "u1", ""); err != nil {
		t.Fatalf("idempotent archive error: %v", err)
	}
	if len(signals.calls) != 1 || len(rec.inputs) != 1 {
		t.Fatalf("expected no extra side effects, signals=%v audits=%d", signals.calls, len(rec.inputs))
	}
}

func TestService_Restore_ClearsSoftDelete(t *testing.T) {
	svc, repo, _, _, _ := newTestService(BlockPolicy{})
	del := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	seedAccount(t, repo, Account{ID: "u1", Email: "t@x.com", Role: RolePatient, DeletedAt: &del})

	a, err := svc.Restore(context.Background(), audit.Actor{ID: "admin-1", Name: "Root"}, "u1", "")
	if err != nil {
		t.Fatalf("Restore error: %v", err)
	}
	if a.Archived() {
		t.Fatalf("expected restored account")
	}
}

func TestService_UpdateProfile_SelfRoleChangeRejected(t *testing.T) {
	svc, repo, _, _, _ := newTestService(BlockPolicy{})
	seedAccount(t, repo, Account{ID: "admin-1", Email: "a@x.com", Role: RoleAdmin})

	role := RolePatient
	_, err := svc.UpdateProfile(context.Background(), audit.Actor{ID: "admin-1", Name: "Root"}, "admin-1", UpdateInput{Role: &role})
	if !errors.Is(err, ErrSelfChange) {
		t.Fatalf("expected ErrSelfChange, got %v", err)
	}
}

func TestService_UpdateProfile_DemotionSignalsLogout(t *testing.T) {
	svc, repo, signals, _, _ := newTestService(BlockPolicy{})
	seedAccount(t, repo, Account{ID: "u1", Email: "t@x.com", Role: RoleAdmin})

	role := RoleDoctor
	a, err := svc.UpdateProfile(context.Background(), audit.Actor{ID: "admin-1", Name: "Root"}, "u1", UpdateInput{Role: &role})
	if err != nil {
		t.Fatalf("UpdateProfile error: %v", err)
	}
	if a.Role != RoleDoctor {
		t.Fatalf("expected doctor, got %s", a.Role)
	}
	if len(signals.calls) != 1 || signals.calls[0] != "u1/role changed" {
		t.Fatalf("expected u1/role changed, got %v", signals.calls)
	}
}

func TestService_List_Filters(t *testing.T) {
	svc, repo, _, _, _ := newTestService(BlockPolicy{})
	del := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	seedAccount(t, repo, Account{ID: "u1", FullName: "Ana Pérez", Email: "ana@x.com", Role: RolePatient})
	seedAccount(t, repo, Account{ID: "u2", FullName: "Bruno Díaz", Email: "bruno@x.com", Role: RoleDoctor})
	seedAccount(t, repo, Account{ID: "u3", FullName: "Vieja Cuenta", Email: "old@x.com", Role: RolePatient, DeletedAt: &del})

	got, err := svc.List(context.Background(), Filter{Role: RolePatient})
	if err != nil || len(got) != 2 {
		t.Fatalf("role filter: got %d err=%v", len(got), err)
	}

	got, err = svc.List(context.Background(), Filter{Status: StatusArchived})
	if err != nil || len(got) != 1 || got[0].ID != "u3" {
		t.Fatalf("archived filter: got %+v err=%v", got, err)
	}

	got, err = svc.List(context.Background(), Filter{Search: "ana"})
	if err != nil || len(got) != 1 || got[0].ID != "u1" {
		t.Fatalf("search filter: got %+v err=%v", got, err)
	}
}

func TestService_CheckAdmin(t *testing.T) {
	svc, repo, _, _, _ := newTestService(BlockPolicy{InactiveBlocks: true})
	seedAccount(t, repo, Account{ID: "admin-1", Email: "a@x.com", Role: RoleAdmin})
	seedAccount(t, repo, Account{ID: "pat-1", Email: "p@x.com", Role: RolePatient})

	if err := svc.CheckAdmin(context.Background(), "admin-1"); err != nil {
		t.Fatalf("expected admin to pass, got %v", err)
	}
	if err := svc.CheckAdmin(context.Background(), "pat-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for patient, got %v", err)
	}
	if err := svc.CheckAdmin(context.Background(), "ghost"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for unknown, got %v", err)
	}
}
