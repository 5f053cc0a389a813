package main

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/healthup/internal/config"
	"github.com/healthup/internal/db"
	"github.com/healthup/internal/service"
	"gorm.io/gorm"
)

const (
	demoEmail    = "demo@healthup.local"
	demoPassword = "demo12345"
)

// 测试数据生成器：写入目录，并为演示账号生成一周的活动
func main() {
	cfg := config.Load()
	if err := db.Init(cfg.DatabaseDriver, cfg.DatabaseDSN()); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成测试数据...")

	summary, err := generateDemoData(db.DB, time.Now())
	if err != nil {
		log.Fatal("生成测试数据失败:", err)
	}

	fmt.Println("测试数据生成完成！")
	fmt.Printf("用户: %s (密码: %s)\n", demoEmail, demoPassword)
	fmt.Printf("专注: %d 次, 课程: %d 节, 习惯日志: %d 条, 新奖励: %d 个\n",
		summary.FocusSessions, summary.Lessons, summary.HabitLogs, summary.Rewards)
}

type demoSummary struct {
	UserID        uint
	FocusSessions int
	Lessons       int
	HabitLogs     int
	Rewards       int
}

func generateDemoData(gdb *gorm.DB, now time.Time) (demoSummary, error) {
	var summary demoSummary

	catalog, err := db.LoadCatalog(nil)
	if err != nil {
		return summary, err
	}
	if _, err := db.Seed(gdb, catalog); err != nil {
		return summary, err
	}

	user, err := ensureDemoUser(gdb)
	if err != nil {
		return summary, err
	}
	summary.UserID = user.ID

	// 已有活动时跳过，避免重复计数
	var existing int64
	if err := gdb.Model(&db.FocusSession{}).Where("user_id = ?", user.ID).Count(&existing).Error; err != nil {
		return summary, err
	}
	if existing > 0 {
		fmt.Println("演示账号已有数据，跳过活动生成")
		return summary, nil
	}

	rewards := service.NewRewardEvaluator()
	focus := service.NewFocusService(gdb, rewards)
	learning := service.NewLearningService(gdb, rewards)
	habits := service.NewHabitService(gdb, service.NewChallengeTracker())

	for _, minutes := range []int{25, 25, 50} {
		session, err := focus.Start(user.ID, service.StartFocusInput{PlannedDuration: minutes, MoodBefore: "calm"})
		if err != nil {
			return summary, err
		}
		rating := 4
		result, err := focus.Complete(user.ID, session.ID, service.CompleteFocusInput{
			ActualDuration: minutes,
			MoodAfter:      "focused",
			FocusRating:    &rating,
		})
		if err != nil {
			return summary, err
		}
		summary.FocusSessions++
		summary.Rewards += len(result.RewardsGranted)
	}

	lessons, err := learning.Personalized(user.ID)
	if err != nil {
		return summary, err
	}
	for i, lesson := range lessons {
		if i == 2 {
			break
		}
		result, err := learning.Complete(user.ID, lesson.ID, service.CompleteLessonInput{Notes: "demo"})
		if err != nil {
			return summary, err
		}
		summary.Lessons++
		summary.Rewards += len(result.RewardsGranted)
	}

	for _, target := range []struct {
		habit string
		value float64
		unit  string
	}{
		{db.HabitWater, 8, "glasses"},
		{db.HabitSleep, 8, "hours"},
		{db.HabitWorkout, 30, "minutes"},
	} {
		if _, err := habits.SetTarget(user.ID, target.habit, service.HabitTargetInput{TargetValue: target.value, Unit: target.unit}); err != nil {
			return summary, err
		}
	}

	for day := 6; day >= 0; day-- {
		date := now.AddDate(0, 0, -day).Format("2006-01-02")
		logs := []service.HabitLogInput{
			{HabitType: db.HabitWater, Value: float64(5 + day%4), Unit: "glasses", LoggedDate: date},
			{HabitType: db.HabitSleep, Value: 6.5 + float64(day%3), Unit: "hours", LoggedDate: date},
		}
		for _, input := range logs {
			if _, err := habits.Log(user.ID, input); err != nil {
				return summary, err
			}
			summary.HabitLogs++
		}
	}

	return summary, nil
}

func ensureDemoUser(gdb *gorm.DB) (*db.User, error) {
	users := service.NewUserService(gdb)
	user, err := users.Register(service.RegisterInput{Email: demoEmail, Name: "Demo", Password: demoPassword})
	if errors.Is(err, service.ErrEmailTaken) {
		fmt.Println("演示账号已存在")
		var found db.User
		if err := gdb.Where("email = ?", demoEmail).First(&found).Error; err != nil {
			return nil, err
		}
		return &found, nil
	}
	return user, err
}
