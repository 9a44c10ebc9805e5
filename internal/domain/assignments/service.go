package assignments

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"instadoc-admin/internal/domain/accounts"
	"instadoc-admin/internal/domain/audit"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("assignment not found")
	ErrNotDoctor       = errors.New("account is not a doctor")
	ErrNotPatient      = errors.New("account is not a patient")
	ErrAlreadyAssigned = errors.New("patient already assigned to this doctor")
)

type Service struct {
	repo     Repository
	accounts accounts.Repository
	audits   audit.Recorder
	now      func() time.Time
}

func NewService(repo Repository, accs accounts.Repository, audits audit.Recorder) *Service {
	return &Service{
		repo:     repo,
		accounts: accs,
		audits:   audits,
		now:      time.Now,
	}
}

// Assign vincula un paciente a un doctor. Valida roles de ambos lados
// y rechaza duplicados del mismo par.
func (s *Service) Assign(ctx context.Context, actor audit.Actor, doctorID, patientID, reason string) (Assignment, error) {
	doctorID = strings.TrimSpace(doctorID)
	patientID = strings.TrimSpace(patientID)
	if doctorID == "" || patientID == "" {
		return Assignment{}, ErrInvalidInput
	}

	doctor, err := s.accounts.GetByID(ctx, doctorID)
	if err != nil {
		return Assignment{}, err
	}
	if doctor.Role != accounts.RoleDoctor || doctor.Archived() {
		return Assignment{}, ErrNotDoctor
	}

	patient, err := s.accounts.GetByID(ctx, patientID)
	if err != nil {
		return Assignment{}, err
	}
	if patient.Role != accounts.RolePatient || patient.Archived() {
		return Assignment{}, ErrNotPatient
	}

	existing, err := s.repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return Assignment{}, err
	}
	for _, a := range existing {
		if a.PatientID == patientID {
			return Assignment{}, ErrAlreadyAssigned
		}
	}

	a := Assignment{
		ID:         uuid.NewString(),
		DoctorID:   doctorID,
		PatientID:  patientID,
		AssignedBy: actor.ID,
		AssignedAt: s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, a); err != nil {
		return Assignment{}, err
	}

	s.audits.Record(ctx, audit.Input{
		Actor:        actor,
		TargetUserID: doctorID,
		Module:       "doctors",
		Action:       "assigned_patient",
		Description:  fmt.Sprintf("%s assigned %s to %s.", actor.Name, patient.DisplayName(), doctor.DisplayName()),
		Reason:       reason,
	})
	return a, nil
}

// Unassign elimina un vínculo puntual.
func (s *Service) Unassign(ctx context.Context, actor audit.Actor, assignmentID, reason string) error {
	a, err := s.repo.GetByID(ctx, assignmentID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, a.ID); err != nil {
		return err
	}

	s.audits.Record(ctx, audit.Input{
		Actor:        actor,
		TargetUserID: a.DoctorID,
		Module:       "doctors",
		Action:       "unassigned_patient",
		Description:  fmt.Sprintf("%s unassigned %s from %s.", actor.Name, s.nameOf(ctx, a.PatientID), s.nameOf(ctx, a.DoctorID)),
		Reason:       reason,
	})
	return nil
}

// UnassignAll desvincula todos los pacientes de un doctor de una vez.
func (s *Service) UnassignAll(ctx context.Context, actor audit.Actor, doctorID, reason string) (int, error) {
	doctorID = strings.TrimSpace(doctorID)
	if doctorID == "" {
		return 0, ErrInvalidInput
	}

	n, err := s.repo.DeleteByDoctor(ctx, doctorID)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}

	s.audits.Record(ctx, audit.Input{
		Actor:        actor,
		TargetUserID: doctorID,
		Module:       "doctors",
		Action:       "unassigned_all",
		Description:  fmt.Sprintf("%s unassigned all patients (%d) from %s.", actor.Name, n, s.nameOf(ctx, doctorID)),
		Reason:       reason,
	})
	return n, nil
}

// AssignedPatient es un vínculo con el perfil del paciente resuelto.
type AssignedPatient struct {
	Assignment
	PatientName  string
	PatientEmail string
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID string) ([]AssignedPatient, error) {
	items, err := s.repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	out := make([]AssignedPatient, 0, len(items))
	for _, a := range items {
		ap := AssignedPatient{Assignment: a, PatientName: "Unknown"}
		if p, err := s.accounts.GetByID(ctx, a.PatientID); err == nil {
			if p.Archived() {
				ap.PatientName = "Archived user"
			} else {
				ap.PatientName = p.DisplayName()
				ap.PatientEmail = p.Email
			}
		}
		out = append(out, ap)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AssignedAt.After(out[j].AssignedAt)
	})
	return out, nil
}

// AvailablePatients lista pacientes activos aún sin vínculo con el doctor
// (el "picker" de asignación). search filtra por nombre o email.
func (s *Service) AvailablePatients(ctx context.Context, doctorID, search string) ([]accounts.Account, error) {
	assigned, err := s.repo.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	taken := make(map[string]bool, len(assigned))
	for _, a := range assigned {
		taken[a.PatientID] = true
	}

	patients, err := s.accounts.ListByRole(ctx, accounts.RolePatient)
	if err != nil {
		return nil, err
	}

	search = strings.ToLower(strings.TrimSpace(search))
	out := make([]accounts.Account, 0, len(patients))
	for _, p := range patients {
		if p.Archived() || taken[p.ID] {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.FullName), search) &&
			!strings.Contains(strings.ToLower(p.Email), search) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Service) nameOf(ctx context.Context, accountID string) string {
	a, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return "Unknown"
	}
	if a.Archived() {
		return "Archived user"
	}
	return a.DisplayName()
}
