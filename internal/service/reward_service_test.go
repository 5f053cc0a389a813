package service

import (
	"testing"

	"github.com/healthup/internal/db"
)

func sessionRewards() []db.Reward {
	return []db.Reward{
		{Name: "First Focus", ConditionType: db.ConditionSessionsCompleted, ConditionValue: 1, PointsValue: 10},
		{Name: "Getting Started", ConditionType: db.ConditionSessionsCompleted, ConditionValue: 5, PointsValue: 50},
		{Name: "Focused Mind", ConditionType: db.ConditionSessionsCompleted, ConditionValue: 25, PointsValue: 100},
	}
}

func TestRewardEvaluatorGrantsOnce(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	user := createTestUser(t, "reward@example.com")
	createTestRewards(t, sessionRewards()...)
	if err := db.DB.Model(&db.User{}).Where("id = ?", user.ID).Update("total_sessions_completed", 5).Error; err != nil {
		t.Fatalf("failed to set counter: %v", err)
	}

	evaluator := NewRewardEvaluator()
	granted, err := evaluator.Evaluate(db.DB, user.ID)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if len(granted) != 2 {
		t.Fatalf("expected 2 rewards granted, got %d", len(granted))
	}
	if got := reloadUser(t, user.ID).ExperiencePoints; got != 60 {
		t.Fatalf("expected 60 xp, got %d", got)
	}

	again, err := evaluator.Evaluate(db.DB, user.ID)
	if err != nil {
		t.Fatalf("second Evaluate returned error: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected no rewards on re-evaluation, got %d", len(again))
	}
	if got := reloadUser(t, user.ID).ExperiencePoints; got != 60 {
		t.Fatalf("expected xp to stay 60, got %d", got)
	}

	var count int64
	db.DB.Model(&db.UserReward{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 2 {
		t.Fatalf("expected 2 user rewards, got %d", count)
	}
}

func TestRewardEvaluatorUnknownUser(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	if _, err := NewRewardEvaluator().Evaluate(db.DB, 404); err != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRewardServiceNextAndCatalog(t *testing.T) {
	cleanup := setupServiceTestDB(t)
	defer cleanup()

	user := createTestUser(t, "next@example.com")
	createTestRewards(t, sessionRewards()...)
	db.DB.Model(&db.User{}).Where("id = ?", user.ID).Update("total_sessions_completed", 3)
	if _, err := NewRewardEvaluator().Evaluate(db.DB, user.ID); err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	svc := NewRewardService(db.DB)
	next, err := svc.Next(reloadUser(t, user.ID))
	if err != nil {
		t.Fatalf("Next returned error: %v", err)
	}
	if next == nil || next.Reward.Name != "Getting Started" {
		t.Fatalf("unexpected next reward: %+v", next)
	}
	if next.Current != 3 || next.Progress != 60 {
		t.Fatalf("unexpected progress: current=%d progress=%d", next.Current, next.Progress)
	}

	catalog, err := svc.Catalog(user.ID)
	if err != nil {
		t.Fatalf("Catalog returned error: %v", err)
	}
	if len(catalog) != 3 {
		t.Fatalf("expected 3 catalog entries, got %d", len(catalog))
	}
	earned := 0
	for _, item := range catalog {
		if item.Earned {
			earned++
			if item.EarnedAt == nil {
				t.Fatal("expected earned_at for earned reward")
			}
		}
	}
	if earned != 1 {
		t.Fatalf("expected 1 earned reward, got %d", earned)
	}
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		current, target float64
		want            int
	}{
		{3, 10, 30},
		{11, 10, 100},
		{0, 10, 0},
		{1, 3, 33},
		{5, 0, 100},
	}
	for _, tt := range tests {
		if got := progressPercent(tt.current, tt.target); got != tt.want {
			t.Fatalf("progressPercent(%v, %v) = %d, want %d", tt.current, tt.target, got, tt.want)
		}
	}
}
