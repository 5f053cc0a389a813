package main

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/healthup/internal/db"
	"gorm.io/gorm"
)

func setupDemoTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	gdb, err := db.Open(db.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared", true)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func TestGenerateDemoDataIsRepeatable(t *testing.T) {
	gdb, cleanup := setupDemoTestDB(t)
	defer cleanup()

	now := time.Now()
	summary, err := generateDemoData(gdb, now)
	if err != nil {
		t.Fatalf("generateDemoData returned error: %v", err)
	}
	if summary.FocusSessions != 3 || summary.Lessons != 2 || summary.HabitLogs != 14 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	var user db.User
	if err := gdb.First(&user, summary.UserID).Error; err != nil {
		t.Fatalf("failed to load demo user: %v", err)
	}
	if user.TotalFocusMinutes != 100 || user.TotalSessionsCompleted != 3 || user.TotalLessonsCompleted != 2 {
		t.Fatalf("unexpected counters: %+v", user)
	}
	if user.ExperiencePoints <= 0 {
		t.Fatalf("expected demo user to earn experience, got %d", user.ExperiencePoints)
	}

	again, err := generateDemoData(gdb, now)
	if err != nil {
		t.Fatalf("second run returned error: %v", err)
	}
	if again.UserID != summary.UserID || again.FocusSessions != 0 {
		t.Fatalf("expected second run to skip activity, got %+v", again)
	}

	var sessions int64
	gdb.Model(&db.FocusSession{}).Where("user_id = ?", summary.UserID).Count(&sessions)
	if sessions != 3 {
		t.Fatalf("expected 3 focus sessions after rerun, got %d", sessions)
	}
}
