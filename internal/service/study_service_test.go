package service

import (
	"errors"
	"testing"

	"github.com/healthup/internal/db"
)

func TestStudyServiceSessionLifecycle(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	user := createTestUser(t, "reader@example.com")
	svc := NewStudyService(db.DB)

	material, err := svc.CreateMaterial(user.ID, StudyMaterialInput{Title: "Deep Work", FilePath: "uploads/deep-work.pdf", FileSize: 2048, MimeType: "application/pdf", TotalPages: 280})
	if err != nil {
		t.Fatalf("CreateMaterial returned error: %v", err)
	}

	session, err := svc.CreateSession(user.ID, StudySessionInput{MaterialID: material.ID, StartPage: 1, EndPage: intPtr(30), PlannedDuration: 45})
	if err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}
	if session.SessionName != "Deep Work" {
		t.Fatalf("expected session name to default to material title, got %q", session.SessionName)
	}

	started, err := svc.StartSession(user.ID, session.ID)
	if err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}
	if started.StartedAt == nil {
		t.Fatal("expected started_at to be set")
	}

	completed, err := svc.CompleteSession(user.ID, session.ID, CompleteStudyInput{ActualDuration: 40, ComprehensionRating: intPtr(4)})
	if err != nil {
		t.Fatalf("CompleteSession returned error: %v", err)
	}
	if !completed.IsCompleted || completed.CompletedAt == nil {
		t.Fatalf("unexpected completed session: %+v", completed)
	}

	if _, err := svc.CompleteSession(user.ID, session.ID, CompleteStudyInput{ActualDuration: 40}); !errors.Is(err, ErrSessionCompleted) {
		t.Fatalf("expected ErrSessionCompleted, got %v", err)
	}
	if _, err := svc.StartSession(user.ID, session.ID); !errors.Is(err, ErrSessionCompleted) {
		t.Fatalf("expected ErrSessionCompleted on start, got %v", err)
	}
}

func TestStudyServiceOwnership(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	owner := createTestUser(t, "owner-study@example.com")
	other := createTestUser(t, "other-study@example.com")
	svc := NewStudyService(db.DB)

	material, err := svc.CreateMaterial(owner.ID, StudyMaterialInput{Title: "Notes"})
	if err != nil {
		t.Fatalf("CreateMaterial returned error: %v", err)
	}
	if _, err := svc.CreateSession(other.ID, StudySessionInput{MaterialID: material.ID, PlannedDuration: 30}); !errors.Is(err, ErrMaterialNotFound) {
		t.Fatalf("expected ErrMaterialNotFound, got %v", err)
	}

	session, err := svc.CreateSession(owner.ID, StudySessionInput{MaterialID: material.ID, PlannedDuration: 30})
	if err != nil {
		t.Fatalf("CreateSession returned error: %v", err)
	}
	if _, err := svc.StartSession(other.ID, session.ID); !errors.Is(err, ErrStudySessionMissing) {
		t.Fatalf("expected ErrStudySessionMissing, got %v", err)
	}

	materials, err := svc.Materials(other.ID)
	if err != nil {
		t.Fatalf("Materials returned error: %v", err)
	}
	if len(materials) != 0 {
		t.Fatalf("expected no materials for other user, got %d", len(materials))
	}

	if _, err := svc.CreateMaterial(owner.ID, StudyMaterialInput{Title: "  "}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.CreateSession(owner.ID, StudySessionInput{MaterialID: material.ID, StartPage: 10, EndPage: intPtr(5), PlannedDuration: 30}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for page range, got %v", err)
	}
}
