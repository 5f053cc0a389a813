package db

import (
	"testing"

	"github.com/google/uuid"
)

func openTestDB(t *testing.T) func() {
	t.Helper()
	gdb, err := Open(DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared", true)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	DB = gdb
	return func() {
		sqlDB, err := DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{xp: 0, want: 1},
		{xp: 999, want: 1},
		{xp: 1000, want: 2},
		{xp: 2500, want: 3},
		{xp: -10, want: 1},
	}
	for _, tt := range tests {
		if got := LevelForXP(tt.xp); got != tt.want {
			t.Fatalf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestHabitTypeForUnitIsExact(t *testing.T) {
	if got := HabitTypeForUnit("Water_Glasses"); got != HabitWater {
		t.Fatalf("expected water, got %q", got)
	}
	// 子串不应命中
	if got := HabitTypeForUnit("glasses_of_wine"); got != "" {
		t.Fatalf("expected no match, got %q", got)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	cleanup := openTestDB(t)
	defer cleanup()

	catalog, err := LoadCatalog(nil)
	if err != nil {
		t.Fatalf("LoadCatalog returned error: %v", err)
	}
	if len(catalog.Rewards) == 0 || len(catalog.Challenges) == 0 {
		t.Fatal("embedded catalog should not be empty")
	}

	first, err := Seed(DB, catalog)
	if err != nil {
		t.Fatalf("first Seed returned error: %v", err)
	}
	if first.Rewards != int64(len(catalog.Rewards)) {
		t.Fatalf("expected %d rewards, got %d", len(catalog.Rewards), first.Rewards)
	}

	second, err := Seed(DB, catalog)
	if err != nil {
		t.Fatalf("second Seed returned error: %v", err)
	}
	if second != (SeedStats{}) {
		t.Fatalf("second seed should insert nothing, got %+v", second)
	}

	// 未声明 habit_type 的挑战按单位映射补齐
	var challenge WellnessChallenge
	if err := DB.Where("title = ?", "Balanced Plate").First(&challenge).Error; err != nil {
		t.Fatalf("failed to load challenge: %v", err)
	}
	if challenge.HabitType != HabitNutrition || !challenge.IsActive {
		t.Fatalf("unexpected challenge: %+v", challenge)
	}
}

func TestMigrateBackfillsHabitType(t *testing.T) {
	cleanup := openTestDB(t)
	defer cleanup()

	legacy := WellnessChallenge{Title: "Legacy", ChallengeType: ChallengeDaily, TargetValue: 8, TargetUnit: "glasses", IsActive: true}
	if err := DB.Create(&legacy).Error; err != nil {
		t.Fatalf("failed to create challenge: %v", err)
	}

	if err := Migrate(DB); err != nil {
		t.Fatalf("Migrate returned error: %v", err)
	}

	var reloaded WellnessChallenge
	if err := DB.First(&reloaded, legacy.ID).Error; err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	if reloaded.HabitType != HabitWater {
		t.Fatalf("expected water, got %q", reloaded.HabitType)
	}
}
