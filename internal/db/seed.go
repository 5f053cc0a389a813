package db

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog 描述内置的奖励、挑战、课程与练习目录。
type Catalog struct {
	Rewards    []CatalogReward    `yaml:"rewards"`
	Challenges []CatalogChallenge `yaml:"challenges"`
	Categories []CatalogCategory  `yaml:"categories"`
	Lessons    []CatalogLesson    `yaml:"lessons"`
	Exercises  []CatalogExercise  `yaml:"exercises"`
}

type CatalogReward struct {
	Name           string `yaml:"name"`
	Description    string `yaml:"description"`
	RewardType     string `yaml:"reward_type"`
	ConditionType  string `yaml:"condition_type"`
	ConditionValue int    `yaml:"condition_value"`
	PointsValue    int    `yaml:"points_value"`
	Icon           string `yaml:"icon"`
	Color          string `yaml:"color"`
	Rarity         string `yaml:"rarity"`
}

type CatalogChallenge struct {
	Title         string  `yaml:"title"`
	Description   string  `yaml:"description"`
	ChallengeType string  `yaml:"challenge_type"`
	HabitType     string  `yaml:"habit_type"`
	TargetValue   float64 `yaml:"target_value"`
	TargetUnit    string  `yaml:"target_unit"`
	PointsReward  int     `yaml:"points_reward"`
}

type CatalogCategory struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
	Color       string `yaml:"color"`
}

type CatalogLesson struct {
	Category          string   `yaml:"category"`
	Title             string   `yaml:"title"`
	Content           string   `yaml:"content"`
	LessonType        string   `yaml:"lesson_type"`
	DifficultyLevel   string   `yaml:"difficulty_level"`
	EstimatedReadTime int      `yaml:"estimated_read_time"`
	Tags              []string `yaml:"tags"`
}

type CatalogExercise struct {
	Title           string `yaml:"title"`
	Description     string `yaml:"description"`
	ExerciseType    string `yaml:"exercise_type"`
	DurationMinutes int    `yaml:"duration_minutes"`
	DifficultyLevel string `yaml:"difficulty_level"`
	AudioURL        string `yaml:"audio_url"`
	Instructions    string `yaml:"instructions"`
}

// LoadCatalog 解析 YAML 目录，raw 为空时使用内置目录。
func LoadCatalog(raw []byte) (Catalog, error) {
	if len(raw) == 0 {
		raw = defaultCatalog
	}
	var catalog Catalog
	if err := yaml.Unmarshal(raw, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	return catalog, nil
}

// SeedStats 汇总本次新写入的目录条目数。
type SeedStats struct {
	Rewards    int64
	Challenges int64
	Categories int64
	Lessons    int64
	Exercises  int64
}

// Seed 写入目录数据，按名称/标题去重，已存在的条目保持不变。
func Seed(gdb *gorm.DB, catalog Catalog) (SeedStats, error) {
	var stats SeedStats
	err := gdb.Transaction(func(tx *gorm.DB) error {
		for _, item := range catalog.Rewards {
			reward := Reward{
				Name:           strings.TrimSpace(item.Name),
				Description:    item.Description,
				RewardType:     item.RewardType,
				ConditionType:  item.ConditionType,
				ConditionValue: item.ConditionValue,
				PointsValue:    item.PointsValue,
				Icon:           item.Icon,
				Color:          item.Color,
				Rarity:         item.Rarity,
			}
			n, err := insertIgnore(tx, &reward, "name")
			if err != nil {
				return fmt.Errorf("seed reward %s: %w", item.Name, err)
			}
			stats.Rewards += n
		}

		for _, item := range catalog.Challenges {
			habit := strings.TrimSpace(item.HabitType)
			if habit == "" {
				habit = HabitTypeForUnit(item.TargetUnit)
			}
			challenge := WellnessChallenge{
				Title:         strings.TrimSpace(item.Title),
				Description:   item.Description,
				ChallengeType: item.ChallengeType,
				HabitType:     habit,
				TargetValue:   item.TargetValue,
				TargetUnit:    item.TargetUnit,
				PointsReward:  item.PointsReward,
				IsActive:      true,
			}
			n, err := insertIgnore(tx, &challenge, "title")
			if err != nil {
				return fmt.Errorf("seed challenge %s: %w", item.Title, err)
			}
			stats.Challenges += n
		}

		categoryIDs := make(map[string]uint, len(catalog.Categories))
		for _, item := range catalog.Categories {
			category := LearningCategory{
				Name:        strings.TrimSpace(item.Name),
				Description: item.Description,
				Icon:        item.Icon,
				Color:       item.Color,
			}
			n, err := insertIgnore(tx, &category, "name")
			if err != nil {
				return fmt.Errorf("seed category %s: %w", item.Name, err)
			}
			stats.Categories += n
		}
		var categories []LearningCategory
		if err := tx.Find(&categories).Error; err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		for _, category := range categories {
			categoryIDs[category.Name] = category.ID
		}

		for _, item := range catalog.Lessons {
			categoryID, ok := categoryIDs[strings.TrimSpace(item.Category)]
			if !ok {
				return fmt.Errorf("seed lesson %s: unknown category %q", item.Title, item.Category)
			}
			tags, err := json.Marshal(item.Tags)
			if err != nil {
				return fmt.Errorf("encode lesson tags: %w", err)
			}
			lesson := LearningLesson{
				CategoryID:        categoryID,
				Title:             strings.TrimSpace(item.Title),
				Content:           strings.TrimSpace(item.Content),
				LessonType:        item.LessonType,
				DifficultyLevel:   item.DifficultyLevel,
				EstimatedReadTime: item.EstimatedReadTime,
				Tags:              datatypes.JSON(tags),
			}
			n, err := insertIgnore(tx, &lesson, "title")
			if err != nil {
				return fmt.Errorf("seed lesson %s: %w", item.Title, err)
			}
			stats.Lessons += n
		}

		for _, item := range catalog.Exercises {
			exercise := MindfulnessExercise{
				Title:           strings.TrimSpace(item.Title),
				Description:     item.Description,
				ExerciseType:    item.ExerciseType,
				DurationMinutes: item.DurationMinutes,
				DifficultyLevel: item.DifficultyLevel,
				AudioURL:        item.AudioURL,
				Instructions:    item.Instructions,
			}
			n, err := insertIgnore(tx, &exercise, "title")
			if err != nil {
				return fmt.Errorf("seed exercise %s: %w", item.Title, err)
			}
			stats.Exercises += n
		}
		return nil
	})
	return stats, err
}

func insertIgnore(tx *gorm.DB, value interface{}, column string) (int64, error) {
	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: column}},
		DoNothing: true,
	}).Create(value)
	return result.RowsAffected, result.Error
}
