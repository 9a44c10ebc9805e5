package assignments

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"instadoc-admin/internal/domain/accounts"
	"instadoc-admin/internal/domain/audit"
)

type testRepo struct {
	mu   sync.Mutex
	byID map[string]Assignment
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Assignment{}}
}

func (r *testRepo) Insert(ctx context.Context, a Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) DeleteByDoctor(ctx context.Context, doctorID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, a := range r.byID {
		if a.DoctorID == doctorID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return Assignment{}, ErrNotFound
	}
	return a, nil
}

func (r *testRepo) ListByDoctor(ctx context.Context, doctorID string) ([]Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Assignment, 0)
	for _, a := range r.byID {
		if a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testRepo) ListAll(ctx context.Context) ([]Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Assignment, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	return out, nil
}

type testAccountsRepo struct {
	byID map[string]accounts.Account
}

func (r *testAccountsRepo) Create(ctx context.Context, a accounts.Account) error { return nil }
func (r *testAccountsRepo) Update(ctx context.Context, a accounts.Account) error { return nil }

func (r *testAccountsRepo) GetByID(ctx context.Context, id string) (accounts.Account, error) {
	a, ok := r.byID[id]
	if !ok {
		return accounts.Account{}, accounts.ErrNotFound
	}
	return a, nil
}

func (r *testAccountsRepo) GetByEmail(ctx context.Context, email string) (accounts.Account, error) {
	return accounts.Account{}, accounts.ErrNotFound
}

func (r *testAccountsRepo) List(ctx context.Context) ([]accounts.Account, error) {
	out := make([]accounts.Account, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	return out, nil
}

func (r *testAccountsRepo) ListByRole(ctx context.Context, role accounts.Role) ([]accounts.Account, error) {
	out := make([]accounts.Account, 0)
	for _, a := range r.byID {
		if a.Role == role {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testAccountsRepo) Count(ctx context.Context) (int, error) { return len(r.byID), nil }

func (r *testAccountsRepo) ListCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	return nil, nil
}

type testRecorder struct {
	inputs []audit.Input
}

func (r *testRecorder) Record(ctx context.Context, in audit.Input) {
	r.inputs = append(r.inputs, in)
}

var actor = audit.Actor{ID: "admin-1", Name: "Root"}

func newTestService() (*Service, *testRepo, *testAccountsRepo, *testRecorder) {
	repo := newTestRepo()
	accs := &testAccountsRepo{byID: map[string]accounts.Account{
		"doc-1": {ID: "doc-1", FullName: "Dr. House", Role: accounts.RoleDoctor, Status: accounts.StatusActive},
		"pat-1": {ID: "pat-1", FullName: "Ana Ruiz", Email: "ana@x.com", Role: accounts.RolePatient, Status: accounts.StatusActive},
		"pat-2": {ID: "pat-2", FullName: "Bruno Díaz", Email: "bruno@x.com", Role: accounts.RolePatient, Status: accounts.StatusActive},
	}}
	rec := &testRecorder{}
	return NewService(repo, accs, rec), repo, accs, rec
}

func TestService_Assign_ValidatesRoles(t *testing.T) {
	svc, _, accs, rec := newTestService()

	a, err := svc.Assign(context.Background(), actor, "doc-1", "pat-1", "")
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if a.DoctorID != "doc-1" || a.PatientID != "pat-1" || a.AssignedBy != "admin-1" {
		t.Fatalf("unexpected assignment: %+v", a)
	}
	if len(rec.inputs) != 1 || rec.inputs[0].Action != "assigned_patient" {
		t.Fatalf("expected assigned_patient audit, got %+v", rec.inputs)
	}

	// paciente como "doctor" no va
	if _, err := svc.Assign(context.Background(), actor, "pat-1", "pat-2", ""); !errors.Is(err, ErrNotDoctor) {
		t.Fatalf("expected ErrNotDoctor, got %v", err)
	}
	// doctor como "paciente" tampoco
	if _, err := svc.Assign(context.Background(), actor, "doc-1", "doc-1", ""); !errors.Is(err, ErrNotPatient) {
		t.Fatalf("expected ErrNotPatient, got %v", err)
	}

	// paciente archivado no se asigna
	archived := accs.byID["pat-2"]
	del := time.Now()
	archived.DeletedAt = &del
	accs.byID["pat-2"] = archived
	if _, err := svc.Assign(context.Background(), actor, "doc-1", "pat-2", ""); !errors.Is(err, ErrNotPatient) {
		t.Fatalf("expected ErrNotPatient for archived, got %v", err)
	}
}

func TestService_Assign_RejectsDuplicatePair(t *testing.T) {
	svc, _, _, _ := newTestService()

	if _, err := svc.Assign(context.Background(), actor, "doc-1", "pat-1", ""); err != nil {
		t.Fatalf("Assign #1: %v", err)
	}
	if _, err := svc.Assign(context.Background(), actor, "doc-1", "pat-1", ""); !errors.Is(err, ErrAlreadyAssigned) {
		t.Fatalf("expected ErrAlreadyAssigned, got %v", err)
	}
}

func TestService_UnassignAll(t *testing.T) {
	svc, _, _, rec := newTestService()

	if _, err := svc.Assign(context.Background(), actor, "doc-1", "pat-1", ""); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if _, err := svc.Assign(context.Background(), actor, "doc-1", "pat-2", ""); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	n, err := svc.UnassignAll(context.Background(), actor, "doc-1", "rotación")
	if err != nil || n != 2 {
		t.Fatalf("UnassignAll: n=%d err=%v", n, err)
	}

	// sin vínculos: no-op sin audit
	audits := len(rec.inputs)
	n, err = svc.UnassignAll(context.Background(), actor, "doc-1", "")
	if err != nil || n != 0 {
		t.Fatalf("UnassignAll empty: n=%d err=%v", n, err)
	}
	if len(rec.inputs) != audits {
		t.Fatalf("empty unassign-all must not audit")
	}
}

func TestService_AvailablePatients_ExcludesAssigned(t *testing.T) {
	svc, _, _, _ := newTestService()

	if _, err := svc.Assign(context.Background(), actor, "doc-1", "pat-1", ""); err != nil {
		t.Fatalf("Assign: %v", err)
	}

	got, err := svc.AvailablePatients(context.Background(), "doc-1", "")
	if err != nil || len(got) != 1 || got[0].ID != "pat-2" {
		t.Fatalf("expected only pat-2 available, got %+v err=%v", got, err)
	}

	got, err = svc.AvailablePatients(context.Background(), "doc-1", "bruno")
	if err != nil || len(got) != 1 {
		t.Fatalf("search filter: %+v err=%v", got, err)
	}
	got, err = svc.AvailablePatients(context.Background(), "doc-1", "nadie")
	if err != nil || len(got) != 0 {
		t.Fatalf("search miss: %+v err=%v", got, err)
	}
}
