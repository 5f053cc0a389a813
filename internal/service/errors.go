package service

import (
	"errors"
	"fmt"
)

// 错误类别，handler 依据类别映射 HTTP 状态码。
var (
	// ErrNotFound 表示用户、会话、课程或挑战等实体不存在
	ErrNotFound = errors.New("not found")
	// ErrValidation 表示入参缺失或超出取值范围
	ErrValidation = errors.New("validation failed")
	// ErrExternalService 表示外部补全服务不可用或返回错误
	ErrExternalService = errors.New("external service failure")
	// ErrStore 表示持久化失败
	ErrStore = errors.New("store failure")
)

// kindError 是带有类别的具体错误，errors.Is 同时命中自身与所属类别。
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Is(target error) bool { return target == e.kind }

func newKindError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

var (
	ErrUserNotFound        = newKindError(ErrNotFound, "user not found")
	ErrSessionNotFound     = newKindError(ErrNotFound, "session not found")
	ErrLessonNotFound      = newKindError(ErrNotFound, "lesson not found")
	ErrExerciseNotFound    = newKindError(ErrNotFound, "exercise not found")
	ErrChallengeNotFound   = newKindError(ErrNotFound, "challenge not found")
	ErrMaterialNotFound    = newKindError(ErrNotFound, "study material not found")
	ErrStudySessionMissing = newKindError(ErrNotFound, "study session not found")

	// ErrEmailTaken 在注册邮箱已存在时返回
	ErrEmailTaken = newKindError(ErrValidation, "email already registered")
	// ErrInvalidCredentials 在邮箱或密码不匹配时返回
	ErrInvalidCredentials = newKindError(ErrValidation, "invalid email or password")
	// ErrSessionCompleted 在重复完成同一会话时返回，避免计数器重复累加
	ErrSessionCompleted = newKindError(ErrValidation, "session already completed")
	// ErrAIAPIKeyMissing 表示未提供必需的 AI 平台 API Key。
	ErrAIAPIKeyMissing = newKindError(ErrExternalService, "api key is required")
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// storeError 将底层持久化错误归为 ErrStore，已分类的错误原样返回。
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range []error{ErrNotFound, ErrValidation, ErrExternalService, ErrStore} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStore, err)
}
