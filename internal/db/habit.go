package db

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// 支持记录的健康习惯类型。
const (
	HabitSleep     = "sleep"
	HabitWater     = "water"
	HabitNutrition = "nutrition"
	HabitWorkout   = "workout"
	HabitMood      = "mood"
	HabitWeight    = "weight"
)

// HabitTypes 按展示顺序列出全部习惯类型。
var HabitTypes = []string{HabitSleep, HabitWater, HabitNutrition, HabitWorkout, HabitMood, HabitWeight}

// HealthHabit 定义用户对某类习惯的每日目标
// (user, habit_type) 唯一
type HealthHabit struct {
	gorm.Model
	UserID      uint   `gorm:"index:idx_user_habit,unique;not null"`
	HabitType   string `gorm:"size:20;index:idx_user_habit,unique;not null"`
	TargetValue float64
	Unit        string
}

// HealthLog 是一次习惯测量，只追加不修改
// LoggedDate 归一化到当天零点，LoggedAt 为写入时间
type HealthLog struct {
	gorm.Model
	UserID     uint   `gorm:"index;not null"`
	HabitType  string `gorm:"size:20;index;not null"`
	Value      float64
	Unit       string
	Notes      string
	LoggedDate time.Time `gorm:"index"`
	LoggedAt   time.Time
}

// challengeUnitHabits 把挑战的 target_unit 精确映射到习惯类型，替代子串匹配。
var challengeUnitHabits = map[string]string{
	"hours":           HabitSleep,
	"sleep_hours":     HabitSleep,
	"hours_sleep":     HabitSleep,
	"glasses":         HabitWater,
	"water_glasses":   HabitWater,
	"liters":          HabitWater,
	"meals":           HabitNutrition,
	"healthy_meals":   HabitNutrition,
	"servings":        HabitNutrition,
	"workouts":        HabitWorkout,
	"workout_minutes": HabitWorkout,
	"active_minutes":  HabitWorkout,
	"mood_checkins":   HabitMood,
	"checkins":        HabitMood,
	"weigh_ins":       HabitWeight,
}

// HabitTypeForUnit 根据挑战单位解析习惯类型，无法识别时返回空字符串。
func HabitTypeForUnit(unit string) string {
	return challengeUnitHabits[strings.ToLower(strings.TrimSpace(unit))]
}

// ChallengeUnits 返回映射表中的全部单位，迁移回填时使用。
func ChallengeUnits() map[string]string {
	out := make(map[string]string, len(challengeUnitHabits))
	for unit, habit := range challengeUnitHabits {
		out[unit] = habit
	}
	return out
}
