package service

import (
	"errors"
	"strings"
	"time"

	"github.com/healthup/internal/db"
	"gorm.io/gorm"
)

// StudyService 管理学习资料元数据与阅读会话。
// 资料文件本身不在本服务存储，只记录路径、大小与页数。
type StudyService struct {
	db  *gorm.DB
	now func() time.Time
}

// StudyMaterialInput 定义登记资料时的参数
type StudyMaterialInput struct {
	Title      string
	FilePath   string
	FileSize   int64
	MimeType   string
	TotalPages int
}

// StudySessionInput 定义新建阅读会话时的参数
type StudySessionInput struct {
	MaterialID      uint
	SessionName     string
	StartPage       int
	EndPage         *int
	PlannedDuration int
}

// CompleteStudyInput 定义完成阅读会话时的参数
type CompleteStudyInput struct {
	ActualDuration      int
	ComprehensionRating *int
}

// NewStudyService 构造 StudyService
func NewStudyService(gdb *gorm.DB) *StudyService {
	return &StudyService{db: gdb, now: time.Now}
}

// Materials 返回用户的资料，最新的在前
func (s *StudyService) Materials(userID uint) ([]db.StudyMaterial, error) {
	var materials []db.StudyMaterial
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&materials).Error; err != nil {
		return nil, storeError("list study materials", err)
	}
	return materials, nil
}

// CreateMaterial 登记一份资料
func (s *StudyService) CreateMaterial(userID uint, input StudyMaterialInput) (*db.StudyMaterial, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, validationError("title is required")
	}
	if input.FileSize < 0 || input.TotalPages < 0 {
		return nil, validationError("file size and total pages must not be negative")
	}

	material := db.StudyMaterial{
		UserID:     userID,
		Title:      title,
		FilePath:   strings.TrimSpace(input.FilePath),
		FileSize:   input.FileSize,
		MimeType:   strings.TrimSpace(input.MimeType),
		TotalPages: input.TotalPages,
	}
	if err := s.db.Create(&material).Error; err != nil {
		return nil, storeError("create study material", err)
	}
	return &material, nil
}

// Sessions 返回用户的阅读会话
func (s *StudyService) Sessions(userID uint) ([]db.StudySession, error) {
	var sessions []db.StudySession
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&sessions).Error; err != nil {
		return nil, storeError("list study sessions", err)
	}
	return sessions, nil
}

// CreateSession 为用户自己的资料新建阅读会话
func (s *StudyService) CreateSession(userID uint, input StudySessionInput) (*db.StudySession, error) {
	if input.PlannedDuration < 1 || input.PlannedDuration > maxSessionMinutes {
		return nil, validationError("planned duration must be between 1 and %d minutes", maxSessionMinutes)
	}
	if input.StartPage < 0 {
		return nil, validationError("start page must not be negative")
	}
	if input.EndPage != nil && *input.EndPage < input.StartPage {
		return nil, validationError("end page must not be before start page")
	}

	var material db.StudyMaterial
	if err := s.db.Where("id = ? AND user_id = ?", input.MaterialID, userID).First(&material).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, storeError("get study material", err)
	}

	name := strings.TrimSpace(input.SessionName)
	if name == "" {
		name = material.Title
	}
	session := db.StudySession{
		UserID:                 userID,
		MaterialID:             material.ID,
		SessionName:            name,
		StartPage:              input.StartPage,
		EndPage:                input.EndPage,
		PlannedDurationMinutes: input.PlannedDuration,
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, storeError("create study session", err)
	}
	return &session, nil
}

// StartSession 标记开始时间，已开始的会话保持原开始时间
func (s *StudyService) StartSession(userID, sessionID uint) (*db.StudySession, error) {
	session, err := s.findSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsCompleted {
		return nil, ErrSessionCompleted
	}
	if session.StartedAt == nil {
		now := s.now()
		session.StartedAt = &now
		if err := s.db.Model(session).Update("started_at", now).Error; err != nil {
			return nil, storeError("start study session", err)
		}
	}
	return session, nil
}

// CompleteSession 完成阅读会话，理解度评分 1..5
func (s *StudyService) CompleteSession(userID, sessionID uint, input CompleteStudyInput) (*db.StudySession, error) {
	if input.ActualDuration < 0 || input.ActualDuration > maxSessionMinutes {
		return nil, validationError("actual duration must be between 0 and %d minutes", maxSessionMinutes)
	}
	if err := validateRating("comprehension rating", input.ComprehensionRating, 1, 5); err != nil {
		return nil, err
	}

	session, err := s.findSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	actual := input.ActualDuration
	res := s.db.Model(&db.StudySession{}).
		Where("id = ? AND is_completed = ?", session.ID, false).
		Updates(map[string]interface{}{
			"actual_duration_minutes": actual,
			"comprehension_rating":    input.ComprehensionRating,
			"is_completed":            true,
			"completed_at":            now,
		})
	if res.Error != nil {
		return nil, storeError("complete study session", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrSessionCompleted
	}

	session.ActualDurationMinutes = &actual
	session.ComprehensionRating = input.ComprehensionRating
	session.IsCompleted = true
	session.CompletedAt = &now
	return session, nil
}

func (s *StudyService) findSession(userID, sessionID uint) (*db.StudySession, error) {
	var session db.StudySession
	if err := s.db.Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudySessionMissing
		}
		return nil, storeError("get study session", err)
	}
	return &session, nil
}
