package service

import (
	"errors"
	"testing"
	"time"

	"github.com/healthup/internal/db"
)

func createWaterChallenge(t *testing.T, challengeType string) db.WellnessChallenge {
	t.Helper()
	challenge := db.WellnessChallenge{
		Title:         "Hydration " + challengeType,
		ChallengeType: challengeType,
		HabitType:     db.HabitWater,
		TargetValue:   10,
		TargetUnit:    "glasses",
		PointsReward:  50,
		IsActive:      true,
	}
	if err := db.DB.Create(&challenge).Error; err != nil {
		t.Fatalf("failed to create challenge: %v", err)
	}
	return challenge
}

func newTestHabitService(now time.Time) *HabitService {
	tracker := NewChallengeTracker()
	tracker.now = fixedClock(now)
	svc := NewHabitService(db.DB, tracker)
	svc.now = fixedClock(now)
	svc.location = time.UTC
	return svc
}

func logWater(t *testing.T, svc *HabitService, userID uint, value float64, date string) *HabitLogResult {
	t.Helper()
	result, err := svc.Log(userID, HabitLogInput{HabitType: db.HabitWater, Value: value, Unit: "glasses", LoggedDate: date})
	if err != nil {
		t.Fatalf("Log returned error: %v", err)
	}
	return result
}

func TestChallengeProgressCompletesOnce(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	user := createTestUser(t, "challenge@example.com")
	challenge := createWaterChallenge(t, db.ChallengeWeekly)
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	habits := newTestHabitService(now)

	first := logWater(t, habits, user.ID, 3, "")
	if len(first.Challenges) != 1 || first.Challenges[0].CurrentValue != 3 || first.Challenges[0].IsCompleted {
		t.Fatalf("unexpected update after first log: %+v", first.Challenges)
	}

	challenges := NewChallengeService(db.DB)
	challenges.now = fixedClock(now)
	views, err := challenges.List(user.ID)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(views) != 1 || !views[0].Joined || views[0].ProgressPercentage != 30 {
		t.Fatalf("unexpected challenge view: %+v", views)
	}

	second := logWater(t, habits, user.ID, 8, "")
	update := second.Challenges[0]
	if update.CurrentValue != 11 || !update.IsCompleted || !update.JustComplete {
		t.Fatalf("unexpected update after completing: %+v", update)
	}
	if got := reloadUser(t, user.ID).ExperiencePoints; got != challenge.PointsReward {
		t.Fatalf("expected %d xp, got %d", challenge.PointsReward, got)
	}

	third := logWater(t, habits, user.ID, 2, "")
	if third.Challenges[0].CurrentValue != 11 || third.Challenges[0].JustComplete {
		t.Fatalf("completed challenge should be frozen: %+v", third.Challenges[0])
	}
	if got := reloadUser(t, user.ID).ExperiencePoints; got != challenge.PointsReward {
		t.Fatalf("challenge reward credited twice: %d", got)
	}

	views, err = challenges.List(user.ID)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if views[0].ProgressPercentage != 100 || !views[0].IsCompleted || views[0].CompletedAt == nil {
		t.Fatalf("unexpected completed view: %+v", views[0])
	}
}

func TestChallengeWeeklyRollover(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	user := createTestUser(t, "rollover@example.com")
	createWaterChallenge(t, db.ChallengeWeekly)

	wednesday := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	logWater(t, newTestHabitService(wednesday), user.ID, 12, "")

	nextMonday := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	habits := newTestHabitService(nextMonday)
	result := logWater(t, habits, user.ID, 4, "")
	if result.Challenges[0].CurrentValue != 4 || result.Challenges[0].IsCompleted {
		t.Fatalf("expected fresh period, got %+v", result.Challenges[0])
	}

	backdated := logWater(t, habits, user.ID, 5, "2026-10-13")
	if backdated.Challenges[0].CurrentValue != 4 {
		t.Fatalf("backdated log should not touch the current period: %+v", backdated.Challenges[0])
	}

	challenges := NewChallengeService(db.DB)
	challenges.now = fixedClock(nextMonday.AddDate(0, 0, 7))
	views, err := challenges.List(user.ID)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if views[0].CurrentValue != 0 || views[0].ProgressPercentage != 0 {
		t.Fatalf("stale period should display as zero: %+v", views[0])
	}
}

func TestChallengeRejectsFutureDatedLogs(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	user := createTestUser(t, "future@example.com")
	createWaterChallenge(t, db.ChallengeWeekly)

	wednesday := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	habits := newTestHabitService(wednesday)
	logWater(t, habits, user.ID, 10, "")

	for _, date := range []string{"2026-10-15", "2026-10-21", "2027-10-27"} {
		_, err := habits.Log(user.ID, HabitLogInput{HabitType: db.HabitWater, Value: 10, Unit: "glasses", LoggedDate: date})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("expected validation error for %s, got %v", date, err)
		}
	}

	// 当天日期仍然有效
	today := logWater(t, habits, user.ID, 1, "2026-10-14")
	if today.Challenges[0].CurrentValue != 10 || !today.Challenges[0].IsCompleted {
		t.Fatalf("expected current week to stay completed, got %+v", today.Challenges[0])
	}

	if got := reloadUser(t, user.ID).ExperiencePoints; got != 50 {
		t.Fatalf("expected challenge reward credited once (50), got %d", got)
	}

	var count int64
	db.DB.Model(&db.HealthLog{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 2 {
		t.Fatalf("expected future logs to be discarded, got %d logs", count)
	}

	challenges := NewChallengeService(db.DB)
	challenges.now = fixedClock(wednesday)
	views, err := challenges.List(user.ID)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if views[0].CurrentValue != 10 || !views[0].IsCompleted {
		t.Fatalf("expected List to show the current week, got %+v", views[0])
	}
}

func TestChallengeMilestoneNeverRollsOver(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	user := createTestUser(t, "milestone@example.com")
	createWaterChallenge(t, db.ChallengeMilestone)

	logWater(t, newTestHabitService(time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)), user.ID, 4, "")
	result := logWater(t, newTestHabitService(time.Date(2026, 6, 5, 9, 0, 0, 0, time.UTC)), user.ID, 4, "")
	if result.Challenges[0].CurrentValue != 8 {
		t.Fatalf("expected milestone to accumulate to 8, got %v", result.Challenges[0].CurrentValue)
	}
}

func TestChallengeIgnoresOtherHabitsAndInactive(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	user := createTestUser(t, "match@example.com")
	createWaterChallenge(t, db.ChallengeDaily)
	inactive := db.WellnessChallenge{
		Title: "Old Sleep", ChallengeType: db.ChallengeDaily, HabitType: db.HabitSleep,
		TargetValue: 8, TargetUnit: "hours", IsActive: false,
	}
	if err := db.DB.Create(&inactive).Error; err != nil {
		t.Fatalf("failed to create challenge: %v", err)
	}

	habits := newTestHabitService(time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC))
	result, err := habits.Log(user.ID, HabitLogInput{HabitType: db.HabitSleep, Value: 8})
	if err != nil {
		t.Fatalf("Log returned error: %v", err)
	}
	if len(result.Challenges) != 0 {
		t.Fatalf("expected no challenge updates, got %+v", result.Challenges)
	}
}

func TestChallengeJoin(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	user := createTestUser(t, "join@example.com")
	challenge := createWaterChallenge(t, db.ChallengeDaily)
	svc := NewChallengeService(db.DB)

	if err := svc.Join(user.ID, challenge.ID); err != nil {
		t.Fatalf("Join returned error: %v", err)
	}
	if err := svc.Join(user.ID, challenge.ID); err != nil {
		t.Fatalf("second Join returned error: %v", err)
	}
	var count int64
	db.DB.Model(&db.UserChallengeProgress{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected one progress row, got %d", count)
	}

	if err := svc.Join(user.ID, 9999); !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("expected ErrChallengeNotFound, got %v", err)
	}
}

func TestPeriodStart(t *testing.T) {
	at := time.Date(2026, 10, 18, 15, 30, 0, 0, time.UTC) // 周日
	tests := []struct {
		challengeType string
		want          time.Time
	}{
		{db.ChallengeDaily, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)},
		{db.ChallengeWeekly, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)},
		{db.ChallengeMonthly, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)},
		{db.ChallengeMilestone, time.Time{}},
	}
	for _, tt := range tests {
		if got := PeriodStart(tt.challengeType, at); !got.Equal(tt.want) {
			t.Fatalf("PeriodStart(%s) = %v, want %v", tt.challengeType, got, tt.want)
		}
	}
}
