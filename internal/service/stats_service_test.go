package service

import (
	"errors"
	"testing"

	"github.com/healthup/internal/db"
)

func TestStatsServiceUserStats(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	user := createTestUser(t, "stats@example.com")
	createTestRewards(t, sessionRewards()...)

	focus := NewFocusService(db.DB, nil)
	session, err := focus.Start(user.ID, StartFocusInput{PlannedDuration: 25})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if _, err := focus.Complete(user.ID, session.ID, CompleteFocusInput{ActualDuration: 25}); err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}

	stats, err := NewStatsService(db.DB).UserStats(user.ID)
	if err != nil {
		t.Fatalf("UserStats returned error: %v", err)
	}
	if stats.Level != 1 || stats.User.TotalSessionsCompleted != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(stats.RecentSessions) != 1 || len(stats.EarnedRewards) != 1 {
		t.Fatalf("unexpected sessions/rewards: %d/%d", len(stats.RecentSessions), len(stats.EarnedRewards))
	}
	if stats.EarnedRewards[0].Reward.Name != "First Focus" {
		t.Fatalf("expected preloaded reward, got %+v", stats.EarnedRewards[0])
	}
	if stats.NextReward == nil || stats.NextReward.Reward.Name != "Getting Started" || stats.NextReward.Progress != 20 {
		t.Fatalf("unexpected next reward: %+v", stats.NextReward)
	}

	if _, err := NewStatsService(db.DB).UserStats(9999); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
