package services

import "time"

// DashboardSnapshot — итоговый ответ дашборда. Каждая секция заполняется
// своим сборщиком и имеет собственное значение по умолчанию, поэтому отказ
// одной необязательной секции не портит остальные.
type DashboardSnapshot struct {
	Success      bool                           `json:"success"`
	User         UserInfo                       `json:"user"`
	NextLesson   *NextLesson                    `json:"nextLesson"`
	Progress     ProgressStats                  `json:"progress"`
	Exercise     ExerciseStats                  `json:"exercise"`
	Compete      CompeteStats                   `json:"compete"`
	Quests       QuestStats                     `json:"quests"`
	Achievements AchievementStats               `json:"achievements"`
	Leaderboard  LeaderboardRank                `json:"leaderboard"`
	ActivityChart []ActivityDay                 `json:"activityChart"`
	Certificates map[string]CertificateProgress `json:"certificates"`

	// Служебные поля для деградированных ответов
	Stale         bool       `json:"_stale,omitempty"`
	CachedAt      *time.Time `json:"_cachedAt,omitempty"`
	DegradedError string     `json:"_error,omitempty"`
}

type UserInfo struct {
	ID               uint      `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	SubscriptionTier string    `json:"subscriptionTier"`
	TotalStars       int       `json:"totalStars"`
	Diamonds         int       `json:"diamonds"`
	LoginStreak      int       `json:"loginStreak"`
	LevelInfo        LevelInfo `json:"levelInfo"`
}

// LevelInfo выводится из суммарных звёзд без обращений к базе.
type LevelInfo struct {
	Level           int     `json:"level"`
	StarsIntoLevel  int     `json:"starsIntoLevel"`
	StarsToNext     int     `json:"starsToNext"`
	ProgressPercent float64 `json:"progressPercent"`
}

type NextLesson struct {
	LevelID     uint   `json:"levelId"`
	LessonID    uint   `json:"lessonId"`
	LevelNumber int    `json:"levelNumber"`
	LessonNumber int   `json:"lessonNumber"`
	Title       string `json:"title"`
}

type LevelProgress struct {
	LevelID     uint    `json:"levelId"`
	LevelNumber int     `json:"levelNumber"`
	Title       string  `json:"title"`
	Completed   int     `json:"completed"`
	Total       int     `json:"total"`
	Percent     float64 `json:"percent"`
	Stars       int     `json:"stars"`
	MaxStars    int     `json:"maxStars"`
	AvgAccuracy float64 `json:"avgAccuracy"`
}

type ProgressStats struct {
	CompletedLessons int             `json:"completedLessons"`
	TotalLessons     int             `json:"totalLessons"`
	TotalStars       int             `json:"totalStars"`
	Levels           []LevelProgress `json:"levels"`
}

type ExerciseStats struct {
	Total        int64            `json:"total"`
	Correct      int64            `json:"correct"`
	Accuracy     float64          `json:"accuracy"`
	AvgTime      float64          `json:"avgTime"`
	ByType       map[string]int64 `json:"byType"`
	ByDifficulty map[string]int64 `json:"byDifficulty"`
}

type CompeteStats struct {
	TotalArenas  int64   `json:"totalArenas"`
	TotalStars   int64   `json:"totalStars"`
	BestCorrect  int     `json:"bestCorrect"`
	BestTime     float64 `json:"bestTime"`
	Top3Finishes int     `json:"top3Finishes"`
}

type QuestView struct {
	QuestID        uint   `json:"questId"`
	Title          string `json:"title"`
	Type           string `json:"type"`
	Progress       int    `json:"progress"`
	Target         int    `json:"target"`
	IsCompleted    bool   `json:"isCompleted"`
	IsClaimed      bool   `json:"isClaimed"`
	RewardStars    int    `json:"rewardStars"`
	RewardDiamonds int    `json:"rewardDiamonds"`
}

type QuestStats struct {
	Active    []QuestView `json:"active"`
	Completed int         `json:"completed"`
	Claimed   int         `json:"claimed"`
}

type AchievementView struct {
	AchievementID uint      `json:"achievementId"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	UnlockedAt    time.Time `json:"unlockedAt"`
}

type AchievementStats struct {
	Total    int64             `json:"total"`
	Unlocked int64             `json:"unlocked"`
	Recent   []AchievementView `json:"recent"`
}

// LeaderboardRank — Rank == nil, когда позиция неизвестна
// (пользователь не найден в выборке или сборка не уложилась в таймаут).
type LeaderboardRank struct {
	Rank         *int    `json:"rank"`
	TotalPlayers int     `json:"totalPlayers"`
	Percentile   float64 `json:"percentile"`
}

type ActivityDay struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Lessons   int    `json:"lessons"`
	Exercises int    `json:"exercises"`
	Compete   int    `json:"compete"`
}

type CertificateRequirement struct {
	Name     string  `json:"name"`
	Current  int     `json:"current"`
	Required int     `json:"required"`
	Weight   int     `json:"weight"`
	Complete bool    `json:"complete"`
	Percent  float64 `json:"percent"`
}

type CertificateProgress struct {
	Title        string                   `json:"title"`
	Progress     float64                  `json:"progress"` // взвешенная сумма, 0..100
	IsEligible   bool                     `json:"isEligible"`
	IsAwarded    bool                     `json:"isAwarded"`
	Requirements []CertificateRequirement `json:"requirements"`
}
