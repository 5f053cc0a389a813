package service

import (
	"errors"
	"testing"

	"github.com/healthup/internal/db"
)

func TestMindfulnessServiceCompleteCreditsXP(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	user := createTestUser(t, "calm@example.com")
	exercise := db.MindfulnessExercise{Title: "Box Breathing", ExerciseType: "breathing", DurationMinutes: 5, DifficultyLevel: "beginner"}
	if err := db.DB.Create(&exercise).Error; err != nil {
		t.Fatalf("failed to create exercise: %v", err)
	}
	svc := NewMindfulnessService(db.DB)

	session, err := svc.Complete(user.ID, CompleteMindfulnessInput{
		ExerciseID:        exercise.ID,
		DurationMinutes:   10,
		MoodBefore:        4,
		MoodAfter:         7,
		StressLevelBefore: 8,
		StressLevelAfter:  3,
	})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if session.ID == 0 {
		t.Fatal("expected session to be persisted")
	}

	updated := reloadUser(t, user.ID)
	if updated.ExperiencePoints != 10*MindfulnessXPPerMinute {
		t.Fatalf("expected %d xp, got %d", 10*MindfulnessXPPerMinute, updated.ExperiencePoints)
	}
	if updated.TotalSessionsCompleted != 0 || updated.TotalFocusMinutes != 0 {
		t.Fatal("mindfulness must not touch focus counters")
	}

	recent, err := svc.Recent(user.ID, 0)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("expected 1 recent session, got %d", len(recent))
	}
}

func TestMindfulnessServiceValidation(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	user := createTestUser(t, "stress@example.com")
	svc := NewMindfulnessService(db.DB)

	valid := CompleteMindfulnessInput{ExerciseID: 1, DurationMinutes: 5, MoodBefore: 5, MoodAfter: 5, StressLevelBefore: 5, StressLevelAfter: 5}

	bad := valid
	bad.MoodAfter = 11
	if _, err := svc.Complete(user.ID, bad); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	bad = valid
	bad.DurationMinutes = 0
	if _, err := svc.Complete(user.ID, bad); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := svc.Complete(user.ID, valid); !errors.Is(err, ErrExerciseNotFound) {
		t.Fatalf("expected ErrExerciseNotFound, got %v", err)
	}
	if got := reloadUser(t, user.ID).ExperiencePoints; got != 0 {
		t.Fatalf("xp changed on failed completion: %d", got)
	}
}
