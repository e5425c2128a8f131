package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"soroban/backend/cache"
	"soroban/backend/config"
	"soroban/backend/models"
)

var ErrUserNotFound = errors.New("user not found")

// DashboardService собирает сводку прогресса ученика из всех доменов.
// Кэши передаются извне: процессные синглтоны, создаваемые в main,
// а в тестах — изолированные экземпляры.
type DashboardService struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Cache  *cache.Store // per-user сводки, короткий TTL
	Static *cache.Store // каталог уровней, длинный TTL
	Logger *log.Logger

	now func() time.Time
}

func NewDashboardService(db *gorm.DB, cfg *config.Config, cacheStore, staticStore *cache.Store, logger *log.Logger) *DashboardService {
	return &DashboardService{
		DB:     db,
		Cfg:    cfg,
		Cache:  cacheStore,
		Static: staticStore,
		Logger: logger,
		now:    time.Now,
	}
}

func dashboardKey(userID uint) string {
	return fmt.Sprintf("dashboard:%d", userID)
}

// InvalidateUser сбрасывает кэш сводки после записи, влияющей на дашборд.
func (s *DashboardService) InvalidateUser(userID uint) {
	s.Cache.Delete(dashboardKey(userID))
}

// GetDashboard — путь запроса с stale-while-revalidate семантикой:
// свежий кэш отдаётся сразу; устаревший, но пригодный — отдаётся сразу
// с пометкой, пересчёт уходит в фон; промах считается синхронно.
// Провал синхронного пересчёта деградирует на любую сохранившуюся запись.
func (s *DashboardService) GetDashboard(ctx context.Context, userID uint, forceRefresh bool) (DashboardSnapshot, error) {
	key := dashboardKey(userID)
	if forceRefresh {
		s.Cache.Delete(key)
	}

	now := s.now()
	if entry, ok := s.Cache.Entry(key); ok {
		if snap, valid := entry.Value.(DashboardSnapshot); valid {
			if entry.Fresh(now) {
				return snap, nil
			}
			if entry.Usable(now, s.Cfg.StaleWindow) {
				s.refreshInBackground(key, userID)
				createdAt := entry.CreatedAt
				snap.Stale = true
				snap.CachedAt = &createdAt
				return snap, nil
			}
		}
	}

	snap, err := s.computeDashboard(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return DashboardSnapshot{}, err
		}
		// Сохранившаяся запись лучше ошибки — даже за stale-окном.
		// Но выдумывать пустой дашборд из ничего нельзя: без кэша
		// клиент должен увидеть настоящую ошибку, а не "нового
		// пользователя без активности".
		if entry, ok := s.Cache.Entry(key); ok {
			if stale, valid := entry.Value.(DashboardSnapshot); valid {
				s.Logger.Printf("dashboard %d: serving stale after compute failure: %v", userID, err)
				createdAt := entry.CreatedAt
				stale.Stale = true
				stale.CachedAt = &createdAt
				stale.DegradedError = err.Error()
				return stale, nil
			}
		}
		return DashboardSnapshot{}, err
	}

	s.Cache.Set(key, snap, s.Cfg.DashboardCacheTTL)
	return snap, nil
}

// refreshInBackground запускает пересчёт, не блокируя читателя.
// Несколько читателей одной устаревшей записи запускают один пересчёт.
// Никто не ждёт результата, поэтому ошибка только логируется.
func (s *DashboardService) refreshInBackground(key string, userID uint) {
	if !s.Cache.BeginRefresh(key) {
		return
	}
	go func() {
		defer s.Cache.EndRefresh(key)
		defer func() {
			if r := recover(); r != nil {
				s.Logger.Printf("dashboard %d: background refresh panic: %v", userID, r)
			}
		}()

		snap, err := s.computeDashboard(context.Background(), userID)
		if err != nil {
			s.Logger.Printf("dashboard %d: background refresh failed: %v", userID, err)
			return
		}
		s.Cache.Set(key, snap, s.Cfg.DashboardCacheTTL)
	}()
}

// computeDashboard выполняет полную сборку по фазам. Фазы идут строго
// последовательно, внутри фазы запросы параллельны: пул соединений на
// общем хостинге маленький, один широкий fan-out на 9+ запросов может
// исчерпать его и уронить запросы других пользователей.
func (s *DashboardService) computeDashboard(ctx context.Context, userID uint) (DashboardSnapshot, error) {
	snap := DashboardSnapshot{Success: true}
	now := s.now()

	// Фаза 1: пользователь обязателен, без него сборка не имеет смысла
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return snap, ErrUserNotFound
		}
		return snap, err
	}
	levelInfo := LevelInfoFromStars(user.TotalStars)

	// Фаза 2: прогресс и тренировки параллельной парой
	var (
		progress     ProgressStats
		progressRows []models.Progress
		exercise     ExerciseStats
	)
	g2, g2ctx := errgroup.WithContext(ctx)
	g2.Go(func() error {
		var err error
		progress, progressRows, err = s.progressStats(g2ctx, userID)
		return err
	})
	g2.Go(func() error {
		var err error
		exercise, err = s.exerciseStats(g2ctx, userID)
		return err
	})
	if err := g2.Wait(); err != nil {
		return snap, err
	}

	// Серия входов — чистая функция над уже загруженной записью.
	// Запись обратно идёт в фоне: её провал не валит запрос, данные
	// пересчитаются из исходных таблиц на следующем запросе.
	streak := CalculateLoginStreak(user.LoginStreak, user.LastLoginAt, now)
	if streak != user.LoginStreak || user.LastLoginAt == nil || !sameCalendarDay(*user.LastLoginAt, now) {
		s.persistStreakAsync(user.ID, streak, now)
	}
	user.LoginStreak = streak

	// Фаза 2.5: следующий урок зависит от данных фазы 2
	levels, err := s.loadCurriculum(ctx)
	if err != nil {
		return snap, err
	}
	snap.NextLesson = nextLessonFromProgress(levels, progressRows)

	levelsCompleted := completedLevelCount(progress)

	// Фаза 3: квесты и ачивки параллельной парой
	var (
		quests       QuestStats
		achievements AchievementStats
	)
	g3, g3ctx := errgroup.WithContext(ctx)
	g3.Go(func() error {
		var err error
		quests, err = s.questStats(g3ctx, userID, &user, levelsCompleted)
		return err
	})
	g3.Go(func() error {
		var err error
		achievements, err = s.achievementStats(g3ctx, userID)
		return err
	})
	if err := g3.Wait(); err != nil {
		return snap, err
	}

	// Фаза 4: необязательные секции. Каждая ограничена своим таймаутом
	// и при провале откатывается на значение по умолчанию — деградация
	// одной секции не трогает остальные и не валит ответ.
	compete := CompeteStats{}
	leaderboard := LeaderboardRank{}
	activity := s.emptyActivityChart(now)
	certificates := defaultCertificateProgress()

	var wg sync.WaitGroup
	wg.Add(4)
	go s.optionalFetch(ctx, "compete stats", &wg, func(octx context.Context) error {
		result, err := s.competeStats(octx, userID)
		if err == nil {
			compete = result
		}
		return err
	})
	go s.optionalFetch(ctx, "leaderboard rank", &wg, func(octx context.Context) error {
		result, err := s.LeaderboardRank(octx, userID)
		if err == nil {
			leaderboard = result
		}
		return err
	})
	go s.optionalFetch(ctx, "activity chart", &wg, func(octx context.Context) error {
		result, err := s.activityChart(octx, userID)
		if err == nil {
			activity = result
		}
		return err
	})
	go s.optionalFetch(ctx, "certificate progress", &wg, func(octx context.Context) error {
		result, err := s.certificateProgress(octx, userID, levelsCompleted, exercise)
		if err == nil {
			certificates = result
		}
		return err
	})
	wg.Wait()

	snap.User = UserInfo{
		ID:               user.ID,
		Username:         user.Username,
		Email:            user.Email,
		SubscriptionTier: user.SubscriptionTier,
		TotalStars:       user.TotalStars,
		Diamonds:         user.Diamonds,
		LoginStreak:      user.LoginStreak,
		LevelInfo:        levelInfo,
	}
	snap.Progress = progress
	snap.Exercise = exercise
	snap.Quests = quests
	snap.Achievements = achievements
	snap.Compete = compete
	snap.Leaderboard = leaderboard
	snap.ActivityChart = activity
	snap.Certificates = certificates

	return snap, nil
}

// optionalFetch выполняет необязательную выборку под своим таймаутом.
// Контекст отменяет запрос в базе, чтобы проигравшая гонку выборка
// не продолжала давить на пул соединений. Паника и ошибка здесь —
// повод для лога, не для отказа запроса.
func (s *DashboardService) optionalFetch(ctx context.Context, name string, wg *sync.WaitGroup, fn func(ctx context.Context) error) {
	defer wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Printf("%s: panic recovered, using default: %v", name, r)
		}
	}()

	octx, cancel := context.WithTimeout(ctx, s.Cfg.OptionalFetchTimeout)
	defer cancel()

	if err := fn(octx); err != nil {
		s.Logger.Printf("%s: degraded to default: %v", name, err)
	}
}

func (s *DashboardService) persistStreakAsync(userID uint, streak int, now time.Time) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.Logger.Printf("user %d: streak write-back panic: %v", userID, r)
			}
		}()

		err := s.DB.Model(&models.User{}).
			Where("id = ?", userID).
			Updates(map[string]interface{}{
				"login_streak":  streak,
				"last_login_at": now,
			}).Error
		if err != nil {
			s.Logger.Printf("user %d: streak write-back failed: %v", userID, err)
		}
	}()
}

// defaultCertificateProgress — пустая форма секции сертификатов
// на случай таймаута: все определения на нуле, право не подтверждено.
func defaultCertificateProgress() map[string]CertificateProgress {
	result := make(map[string]CertificateProgress, len(certDefinitions))
	for _, def := range certDefinitions {
		result[def.Type] = CertificateProgress{
			Title:        def.Title,
			Requirements: []CertificateRequirement{},
		}
	}
	return result
}
