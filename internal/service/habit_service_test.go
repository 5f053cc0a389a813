package service

import (
	"errors"
	"testing"
	"time"

	"github.com/healthup/internal/db"
)

func TestHabitServiceSetTargetIsIdempotent(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	user := createTestUser(t, "habit@example.com")
	svc := NewHabitService(db.DB, nil)

	first, err := svc.SetTarget(user.ID, "Water", HabitTargetInput{TargetValue: 8, Unit: "glasses"})
	if err != nil {
		t.Fatalf("SetTarget returned error: %v", err)
	}
	if first.HabitType != db.HabitWater {
		t.Fatalf("expected normalized habit type, got %s", first.HabitType)
	}

	second, err := svc.SetTarget(user.ID, db.HabitWater, HabitTargetInput{TargetValue: 10, Unit: "glasses"})
	if err != nil {
		t.Fatalf("SetTarget returned error: %v", err)
	}
	if second.ID != first.ID || second.TargetValue != 10 {
		t.Fatalf("expected update in place, got %+v", second)
	}

	targets, err := svc.Targets(user.ID)
	if err != nil {
		t.Fatalf("Targets returned error: %v", err)
	}
	if len(targets) != 1 {
		t.Fatalf("expected 1 target, got %d", len(targets))
	}

	if _, err := svc.SetTarget(user.ID, "steps", HabitTargetInput{TargetValue: 1}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for unknown habit, got %v", err)
	}
	if _, err := svc.SetTarget(user.ID, db.HabitSleep, HabitTargetInput{TargetValue: 0}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for zero target, got %v", err)
	}
}

func TestHabitServiceLogValidation(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	user := createTestUser(t, "validate@example.com")
	svc := NewHabitService(db.DB, nil)

	cases := []HabitLogInput{
		{HabitType: "coffee", Value: 1},
		{HabitType: db.HabitWater, Value: -1},
		{HabitType: db.HabitWater, Value: 1, LoggedDate: "14/10/2026"},
	}
	for _, input := range cases {
		if _, err := svc.Log(user.ID, input); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error for %+v, got %v", input, err)
		}
	}

	if _, err := svc.Log(9999, HabitLogInput{HabitType: db.HabitWater, Value: 1}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	var count int64
	db.DB.Model(&db.HealthLog{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no logs to be written, got %d", count)
	}
}

func TestHabitServiceSummary(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	user := createTestUser(t, "summary@example.com")
	now := time.Date(2026, 10, 14, 18, 0, 0, 0, time.UTC)
	svc := newTestHabitService(now)

	entries := []HabitLogInput{
		{HabitType: db.HabitSleep, Value: 7.5, Unit: "hours"},
		{HabitType: db.HabitWater, Value: 6, Unit: "glasses"},
		{HabitType: db.HabitMood, Value: 4, LoggedDate: "2026-10-11"},
		{HabitType: db.HabitWorkout, Value: 30, LoggedDate: "2026-10-01"},
	}
	for _, input := range entries {
		if _, err := svc.Log(user.ID, input); err != nil {
			t.Fatalf("Log returned error: %v", err)
		}
	}

	summary, err := svc.Summary(user.ID)
	if err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}
	if len(summary.Today) != 2 {
		t.Fatalf("expected 2 logs today, got %d", len(summary.Today))
	}
	if len(summary.Week) != 3 {
		t.Fatalf("expected 3 logs this week, got %d", len(summary.Week))
	}
	for _, entry := range summary.Week {
		if entry.HabitType == db.HabitWorkout {
			t.Fatal("log older than seven days should be excluded")
		}
	}
}
