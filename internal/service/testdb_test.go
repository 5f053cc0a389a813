package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/healthup/internal/db"
)

func setupServiceTestDB(t *testing.T) func() {
	t.Helper()
	gdb, err := db.Open(db.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared", true)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = gdb

	return func() {
		sqlDB, err := db.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func createTestUser(t *testing.T, email string) db.User {
	t.Helper()
	user := db.User{Email: email, Name: "tester", PasswordHash: "x"}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func reloadUser(t *testing.T, id uint) db.User {
	t.Helper()
	var user db.User
	if err := db.DB.First(&user, id).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	return user
}

func createTestRewards(t *testing.T, rewards ...db.Reward) []db.Reward {
	t.Helper()
	for i := range rewards {
		if err := db.DB.Create(&rewards[i]).Error; err != nil {
			t.Fatalf("failed to create reward: %v", err)
		}
	}
	return rewards
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
