package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Init 打开数据库、执行迁移并设置全局 DB。
func Init(driver, dsn string) error {
	gdb, err := Open(driver, dsn, false)
	if err != nil {
		return err
	}
	if err := Migrate(gdb); err != nil {
		return err
	}
	DB = gdb
	return nil
}

// Open 按驱动建立连接。sqlite 为空路径时回退到 healthup.db。
// silent 为 true 时关闭 gorm 自带的 SQL 日志，测试中使用。
func Open(driver, dsn string, silent bool) (*gorm.DB, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	} else {
		cfg.Logger = logger.Default.LogMode(logger.Warn)
	}

	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverPostgres:
		if strings.TrimSpace(dsn) == "" {
			return nil, errors.New("postgres dsn is required")
		}
		gdb, err := gorm.Open(postgres.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return gdb, nil
	default:
		path := strings.TrimSpace(dsn)
		if path == "" {
			path = "healthup.db"
		}
		if !strings.HasPrefix(path, "file:") {
			if err := ensureParentDir(path); err != nil {
				return nil, err
			}
		}
		gdb, err := gorm.Open(sqlite.Open(path), cfg)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// sqlite 只允许单写者，串行化连接避免 database is locked
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return gdb, nil
	}
}

// Migrate 自动迁移所有模型，并回填历史数据。
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&User{},
		&FocusSession{},
		&LearningCategory{},
		&LearningLesson{},
		&UserLessonProgress{},
		&Reward{},
		&UserReward{},
		&AIInsight{},
		&HealthHabit{},
		&HealthLog{},
		&WellnessChallenge{},
		&UserChallengeProgress{},
		&MindfulnessExercise{},
		&MindfulnessSession{},
		&StudyMaterial{},
		&StudySession{},
		&SystemSetting{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return backfillChallengeHabitTypes(gdb)
}

// backfillChallengeHabitTypes 为缺少 habit_type 的挑战按单位映射补齐。
func backfillChallengeHabitTypes(gdb *gorm.DB) error {
	for unit, habit := range ChallengeUnits() {
		if err := gdb.Model(&WellnessChallenge{}).
			Where("(habit_type = '' OR habit_type IS NULL) AND LOWER(target_unit) = ?", unit).
			Update("habit_type", habit).Error; err != nil {
			return fmt.Errorf("backfill challenge habit type: %w", err)
		}
	}
	return nil
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
