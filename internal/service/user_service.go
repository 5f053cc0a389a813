package service

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/healthup/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 8

	defaultFocusGoalMinutes       = 120
	defaultLearningGoalLessons    = 3
	defaultPreferredSessionLength = 25
)

// UserService 负责本地账号注册、登录校验与目标设置
type UserService struct {
	db *gorm.DB
}

// RegisterInput 定义注册参数
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// GoalsInput 定义资料与目标更新参数，零值字段保持不变
type GoalsInput struct {
	Name                   string
	FocusGoalMinutes       int
	LearningGoalLessons    int
	PreferredSessionLength int
}

// NewUserService 构造 UserService
func NewUserService(gdb *gorm.DB) *UserService {
	return &UserService{db: gdb}
}

// Register 创建新用户，邮箱统一转为小写
func (s *UserService) Register(input RegisterInput) (*db.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, validationError("a valid email is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, validationError("password must be at least %d characters", minPasswordLength)
	}

	var count int64
	if err := s.db.Model(&db.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, storeError("check email", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, storeError("hash password", err)
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}

	user := db.User{
		Email:                  email,
		Name:                   name,
		PasswordHash:           string(hashed),
		FocusGoalMinutes:       defaultFocusGoalMinutes,
		LearningGoalLessons:    defaultLearningGoalLessons,
		PreferredSessionLength: defaultPreferredSessionLength,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, storeError("create user", err)
	}
	return &user, nil
}

// Authenticate 校验邮箱与密码
func (s *UserService) Authenticate(email, password string) (*db.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user db.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeError("find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// Get 根据 ID 获取用户
func (s *UserService) Get(id uint) (*db.User, error) {
	var user db.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeError("get user", err)
	}
	return &user, nil
}

// UpdateGoals 更新姓名与学习/专注目标，只写入目标相关列，不触碰计数器
func (s *UserService) UpdateGoals(id uint, input GoalsInput) (*db.User, error) {
	if input.FocusGoalMinutes < 0 || input.LearningGoalLessons < 0 || input.PreferredSessionLength < 0 {
		return nil, validationError("goals must be positive")
	}
	if input.PreferredSessionLength > maxSessionMinutes {
		return nil, validationError("preferred session length must not exceed %d minutes", maxSessionMinutes)
	}

	user, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name := strings.TrimSpace(input.Name); name != "" {
		updates["name"] = name
	}
	if input.FocusGoalMinutes > 0 {
		updates["focus_goal_minutes"] = input.FocusGoalMinutes
	}
	if input.LearningGoalLessons > 0 {
		updates["learning_goal_lessons"] = input.LearningGoalLessons
	}
	if input.PreferredSessionLength > 0 {
		updates["preferred_session_length"] = input.PreferredSessionLength
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.Model(&db.User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, storeError("update user goals", err)
	}
	return s.Get(id)
}
