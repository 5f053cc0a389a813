package handler

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/healthup/internal/db"
	"github.com/healthup/internal/service"
)

func userPayload(user db.User) gin.H {
	return gin.H{
		"id":                       user.ID,
		"email":                    user.Email,
		"name":                     user.Name,
		"avatar_url":               user.AvatarURL,
		"focus_goal_minutes":       user.FocusGoalMinutes,
		"learning_goal_lessons":    user.LearningGoalLessons,
		"preferred_session_length": user.PreferredSessionLength,
		"total_focus_minutes":      user.TotalFocusMinutes,
		"total_sessions_completed": user.TotalSessionsCompleted,
		"total_lessons_completed":  user.TotalLessonsCompleted,
		"current_streak":           user.CurrentStreak,
		"longest_streak":           user.LongestStreak,
		"experience_points":        user.ExperiencePoints,
		"level":                    user.Level(),
		"created_at":               formatTime(user.CreatedAt),
	}
}

func focusSessionPayload(session db.FocusSession) gin.H {
	return gin.H{
		"id":                       session.ID,
		"session_type":             session.SessionType,
		"planned_duration_minutes": session.PlannedDurationMinutes,
		"actual_duration_minutes":  session.ActualDurationMinutes,
		"is_completed":             session.IsCompleted,
		"started_at":               formatTime(session.StartedAt),
		"completed_at":             formatTimePtr(session.CompletedAt),
		"mood_before":              session.MoodBefore,
		"mood_after":               session.MoodAfter,
		"focus_rating":             session.FocusRating,
		"notes":                    session.Notes,
	}
}

func rewardPayload(reward db.Reward) gin.H {
	return gin.H{
		"id":              reward.ID,
		"name":            reward.Name,
		"description":     reward.Description,
		"reward_type":     reward.RewardType,
		"condition_type":  reward.ConditionType,
		"condition_value": reward.ConditionValue,
		"points_value":    reward.PointsValue,
		"icon":            reward.Icon,
		"color":           reward.Color,
		"rarity":          reward.Rarity,
	}
}

func rewardsPayload(rewards []db.Reward) []gin.H {
	items := make([]gin.H, 0, len(rewards))
	for _, reward := range rewards {
		items = append(items, rewardPayload(reward))
	}
	return items
}

func earnedRewardPayload(earned db.UserReward) gin.H {
	item := rewardPayload(earned.Reward)
	item["earned_at"] = formatTime(earned.EarnedAt)
	return item
}

func categoryPayload(category db.LearningCategory) gin.H {
	return gin.H{
		"id":          category.ID,
		"name":        category.Name,
		"description": category.Description,
		"icon":        category.Icon,
		"color":       category.Color,
	}
}

func lessonPayload(lesson db.LearningLesson) gin.H {
	tags := []string{}
	if len(lesson.Tags) > 0 {
		if err := json.Unmarshal(lesson.Tags, &tags); err != nil {
			tags = []string{}
		}
	}

	item := gin.H{
		"id":                  lesson.ID,
		"category_id":         lesson.CategoryID,
		"title":               lesson.Title,
		"content":             lesson.Content,
		"content_html":        markdownOrEmpty(lesson.Content),
		"lesson_type":         lesson.LessonType,
		"difficulty_level":    lesson.DifficultyLevel,
		"estimated_read_time": lesson.EstimatedReadTime,
		"tags":                tags,
		"is_ai_generated":     lesson.IsAIGenerated,
	}
	if lesson.Category.ID != 0 {
		item["category"] = categoryPayload(lesson.Category)
	}
	return item
}

func lessonProgressPayload(progress db.UserLessonProgress) gin.H {
	return gin.H{
		"lesson_id":       progress.LessonID,
		"is_completed":    progress.IsCompleted,
		"completion_date": formatTimePtr(progress.CompletionDate),
		"rating":          progress.Rating,
		"notes":           progress.Notes,
	}
}

func habitTargetPayload(habit db.HealthHabit) gin.H {
	return gin.H{
		"id":           habit.ID,
		"habit_type":   habit.HabitType,
		"target_value": habit.TargetValue,
		"unit":         habit.Unit,
	}
}

func healthLogPayload(entry db.HealthLog) gin.H {
	return gin.H{
		"id":          entry.ID,
		"habit_type":  entry.HabitType,
		"value":       entry.Value,
		"unit":        entry.Unit,
		"notes":       entry.Notes,
		"logged_date": formatDate(entry.LoggedDate),
		"logged_at":   formatTime(entry.LoggedAt),
	}
}

func healthLogsPayload(entries []db.HealthLog) []gin.H {
	items := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		items = append(items, healthLogPayload(entry))
	}
	return items
}

func challengePayload(challenge db.WellnessChallenge) gin.H {
	return gin.H{
		"id":             challenge.ID,
		"title":          challenge.Title,
		"description":    challenge.Description,
		"challenge_type": challenge.ChallengeType,
		"habit_type":     challenge.HabitType,
		"target_value":   challenge.TargetValue,
		"target_unit":    challenge.TargetUnit,
		"points_reward":  challenge.PointsReward,
		"start_date":     formatTimePtr(challenge.StartDate),
		"end_date":       formatTimePtr(challenge.EndDate),
	}
}

func challengeViewPayload(view service.ChallengeView) gin.H {
	item := challengePayload(view.Challenge)
	item["joined"] = view.Joined
	item["current_value"] = view.CurrentValue
	item["is_completed"] = view.IsCompleted
	item["completed_at"] = formatTimePtr(view.CompletedAt)
	item["progress_percentage"] = view.ProgressPercentage
	return item
}

func challengeUpdatePayload(update service.ChallengeUpdate) gin.H {
	return gin.H{
		"challenge_id":   update.Challenge.ID,
		"title":          update.Challenge.Title,
		"current_value":  update.CurrentValue,
		"target_value":   update.Challenge.TargetValue,
		"is_completed":   update.IsCompleted,
		"just_completed": update.JustComplete,
	}
}

func exercisePayload(exercise db.MindfulnessExercise) gin.H {
	return gin.H{
		"id":               exercise.ID,
		"title":            exercise.Title,
		"description":      exercise.Description,
		"exercise_type":    exercise.ExerciseType,
		"duration_minutes": exercise.DurationMinutes,
		"difficulty_level": exercise.DifficultyLevel,
		"audio_url":        exercise.AudioURL,
		"instructions":     exercise.Instructions,
	}
}

func mindfulnessSessionPayload(session db.MindfulnessSession) gin.H {
	return gin.H{
		"id":                  session.ID,
		"exercise_id":         session.ExerciseID,
		"duration_minutes":    session.DurationMinutes,
		"mood_before":         session.MoodBefore,
		"mood_after":          session.MoodAfter,
		"stress_level_before": session.StressLevelBefore,
		"stress_level_after":  session.StressLevelAfter,
		"notes":               session.Notes,
		"created_at":          formatTime(session.CreatedAt),
	}
}

func materialPayload(material db.StudyMaterial) gin.H {
	return gin.H{
		"id":           material.ID,
		"title":        material.Title,
		"file_path":    material.FilePath,
		"file_size":    material.FileSize,
		"mime_type":    material.MimeType,
		"total_pages":  material.TotalPages,
		"is_processed": material.IsProcessed,
		"created_at":   formatTime(material.CreatedAt),
	}
}

func studySessionPayload(session db.StudySession) gin.H {
	return gin.H{
		"id":                       session.ID,
		"material_id":              session.MaterialID,
		"session_name":             session.SessionName,
		"start_page":               session.StartPage,
		"end_page":                 session.EndPage,
		"planned_duration_minutes": session.PlannedDurationMinutes,
		"actual_duration_minutes":  session.ActualDurationMinutes,
		"is_completed":             session.IsCompleted,
		"comprehension_rating":     session.ComprehensionRating,
		"started_at":               formatTimePtr(session.StartedAt),
		"completed_at":             formatTimePtr(session.CompletedAt),
	}
}

func insightPayload(insight db.AIInsight) gin.H {
	var ctx interface{} = gin.H{}
	if len(insight.Context) > 0 {
		if err := json.Unmarshal(insight.Context, &ctx); err != nil {
			ctx = gin.H{}
		}
	}
	return gin.H{
		"id":               insight.ID,
		"insight_type":     insight.InsightType,
		"insight_data":     insight.InsightData,
		"insight_html":     markdownOrEmpty(insight.InsightData),
		"context":          ctx,
		"confidence_score": insight.ConfidenceScore,
		"provider":         insight.Provider,
		"model":            insight.ModelName,
		"created_at":       formatTime(insight.CreatedAt),
	}
}

func systemSettingsPayload(settings service.SystemSettings) gin.H {
	return gin.H{
		"ai_provider":       settings.AIProvider,
		"ai_model":          settings.AIModel,
		"openai_api_key":    service.MaskSecret(settings.OpenAIAPIKey),
		"deepseek_api_key":  service.MaskSecret(settings.DeepSeekAPIKey),
		"anthropic_api_key": service.MaskSecret(settings.AnthropicAPIKey),
		"gemini_api_key":    service.MaskSecret(settings.GeminiAPIKey),
		"insight_prompt":    settings.InsightPrompt,
	}
}
