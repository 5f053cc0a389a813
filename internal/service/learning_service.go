package service

import (
	"errors"
	"strings"
	"time"

	"github.com/healthup/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// LessonXP 是完成一节课固定奖励的经验值
	LessonXP = 25

	defaultLessonsLimit     = 20
	maxLessonsLimit         = 100
	personalizedLessonCount = 5
)

// LearningService 提供课程目录查询与课程完成记录。
type LearningService struct {
	db      *gorm.DB
	rewards *RewardEvaluator
	now     func() time.Time
}

// LessonFilter 描述课程列表过滤条件
type LessonFilter struct {
	CategoryID uint
	Limit      int
}

// CompleteLessonInput 定义完成课程时的参数
type CompleteLessonInput struct {
	Rating *int
	Notes  string
}

// LessonCompletion 返回完成结果；FirstCompletion 为 false 表示仅更新了评分与笔记。
type LessonCompletion struct {
	Progress        db.UserLessonProgress
	FirstCompletion bool
	RewardsGranted  []db.Reward
}

// NewLearningService 构造 LearningService
func NewLearningService(gdb *gorm.DB, rewards *RewardEvaluator) *LearningService {
	if rewards == nil {
		rewards = NewRewardEvaluator()
	}
	return &LearningService{db: gdb, rewards: rewards, now: time.Now}
}

// Categories 返回全部分类，按名称排序
func (s *LearningService) Categories() ([]db.LearningCategory, error) {
	var categories []db.LearningCategory
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, storeError("list learning categories", err)
	}
	return categories, nil
}

// Lessons 返回课程列表，可按分类过滤
func (s *LearningService) Lessons(filter LessonFilter) ([]db.LearningLesson, error) {
	limit := filter.Limit
	if limit <= 0 || limit > maxLessonsLimit {
		limit = defaultLessonsLimit
	}

	query := s.db.Preload("Category").Model(&db.LearningLesson{})
	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}

	var lessons []db.LearningLesson
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&lessons).Error; err != nil {
		return nil, storeError("list lessons", err)
	}
	return lessons, nil
}

// Get 根据 ID 获取课程
func (s *LearningService) Get(id uint) (*db.LearningLesson, error) {
	var lesson db.LearningLesson
	if err := s.db.Preload("Category").First(&lesson, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, storeError("get lesson", err)
	}
	return &lesson, nil
}

// Personalized 随机返回最多 5 节用户尚未完成的课程
func (s *LearningService) Personalized(userID uint) ([]db.LearningLesson, error) {
	completed := s.db.Model(&db.UserLessonProgress{}).
		Select("lesson_id").
		Where("user_id = ? AND is_completed = ?", userID, true)

	var lessons []db.LearningLesson
	if err := s.db.Preload("Category").
		Where("id NOT IN (?)", completed).
		Order("RANDOM()").
		Limit(personalizedLessonCount).
		Find(&lessons).Error; err != nil {
		return nil, storeError("list personalized lessons", err)
	}
	return lessons, nil
}

// Complete 记录课程完成。每节课对每个用户只计入一次：
// 首次完成时课程数 +1、经验 +25 并评估奖励；再次完成只更新评分与笔记。
func (s *LearningService) Complete(userID, lessonID uint, input CompleteLessonInput) (*LessonCompletion, error) {
	if err := validateRating("rating", input.Rating, 1, 5); err != nil {
		return nil, err
	}

	result := &LessonCompletion{}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var lesson db.LearningLesson
		if err := tx.Select("id").First(&lesson, lessonID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLessonNotFound
			}
			return err
		}

		now := s.now()
		notes := strings.TrimSpace(input.Notes)
		progress := db.UserLessonProgress{UserID: userID, LessonID: lessonID}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
			DoNothing: true,
		}).Create(&progress).Error; err != nil {
			return err
		}

		// 只有从未完成切换为完成的那一次才计数
		res := tx.Model(&db.UserLessonProgress{}).
			Where("user_id = ? AND lesson_id = ? AND is_completed = ?", userID, lessonID, false).
			Updates(map[string]interface{}{
				"is_completed":    true,
				"completion_date": now,
			})
		if res.Error != nil {
			return res.Error
		}
		result.FirstCompletion = res.RowsAffected == 1

		if err := tx.Model(&db.UserLessonProgress{}).
			Where("user_id = ? AND lesson_id = ?", userID, lessonID).
			Updates(map[string]interface{}{
				"rating": input.Rating,
				"notes":  notes,
			}).Error; err != nil {
			return err
		}

		if result.FirstCompletion {
			if err := tx.Model(&db.User{}).Where("id = ?", userID).UpdateColumns(map[string]interface{}{
				"total_lessons_completed": gorm.Expr("total_lessons_completed + ?", 1),
				"experience_points":       gorm.Expr("experience_points + ?", LessonXP),
			}).Error; err != nil {
				return err
			}
			granted, err := s.rewards.Evaluate(tx, userID)
			if err != nil {
				return err
			}
			result.RewardsGranted = granted
		}

		return tx.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&result.Progress).Error
	})
	if err != nil {
		return nil, storeError("complete lesson", err)
	}
	return result, nil
}
