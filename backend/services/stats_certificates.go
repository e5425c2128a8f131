package services

import (
	"context"

	"soroban/backend/models"
)

// Сколько верных ответов нужно в режиме тренировки, чтобы режим
// засчитался в сертификат.
const practicePassThreshold = 20

type certDefinition struct {
	Type             string
	Title            string
	LevelsRequired   int     // вес 40
	PracticeRequired int     // вес 30, пройденные режимы тренировки
	ArenasRequired   int     // вес 20
	AccuracyRequired float64 // вес 10
}

// Набор сертификатов фиксированный и задан кодом, не данными.
var certDefinitions = []certDefinition{
	{"bronze", "Bronze Abacus", 2, 1, 1, 60},
	{"silver", "Silver Abacus", 4, 2, 5, 75},
	{"gold", "Gold Abacus", 7, 4, 10, 85},
	{"master", "Soroban Master", 10, 5, 20, 95},
}

// certificateProgress оценивает право на каждый сертификат на лету.
// Право даётся, только когда выполнено каждое под-требование по
// отдельности; взвешенная сумма — лишь индикатор общего прогресса,
// её достижение 100 само по себе права не даёт.
func (s *DashboardService) certificateProgress(ctx context.Context, userID uint, levelsCompleted int, exercise ExerciseStats) (map[string]CertificateProgress, error) {
	db := s.DB.WithContext(ctx)

	// Режимы тренировки, набравшие нужное число верных ответов
	type typeCount struct {
		Type string
		Cnt  int64
	}
	var typeCounts []typeCount
	if err := db.Model(&models.ExerciseResult{}).
		Select("type, COUNT(*) as cnt").
		Where("user_id = ? AND correct = ?", userID, true).
		Group("type").
		Scan(&typeCounts).Error; err != nil {
		return nil, err
	}
	passedTypes := 0
	for _, tc := range typeCounts {
		if tc.Cnt >= practicePassThreshold {
			passedTypes++
		}
	}

	var arenasPlayed int64
	if err := db.Model(&models.CompeteResult{}).
		Where("user_id = ?", userID).
		Distinct("arena_id").
		Count(&arenasPlayed).Error; err != nil {
		return nil, err
	}

	awarded := make(map[string]bool)
	var certs []models.Certificate
	if err := db.Where("user_id = ?", userID).Find(&certs).Error; err != nil {
		return nil, err
	}
	for i := range certs {
		awarded[certs[i].CertType] = true
	}

	result := make(map[string]CertificateProgress, len(certDefinitions))
	for _, def := range certDefinitions {
		reqs := []CertificateRequirement{
			buildRequirement("levels", levelsCompleted, def.LevelsRequired, 40),
			buildRequirement("practice", passedTypes, def.PracticeRequired, 30),
			buildRequirement("compete", int(arenasPlayed), def.ArenasRequired, 20),
			accuracyRequirement(exercise, def.AccuracyRequired),
		}

		progress := 0.0
		eligible := true
		for _, r := range reqs {
			progress += float64(r.Weight) * r.Percent / 100
			if !r.Complete {
				eligible = false
			}
		}

		result[def.Type] = CertificateProgress{
			Title:        def.Title,
			Progress:     progress,
			IsEligible:   eligible,
			IsAwarded:    awarded[def.Type],
			Requirements: reqs,
		}
	}

	return result, nil
}

func buildRequirement(name string, current, required, weight int) CertificateRequirement {
	req := CertificateRequirement{
		Name:     name,
		Current:  current,
		Required: required,
		Weight:   weight,
	}
	if required <= 0 {
		req.Complete = true
		req.Percent = 100
		return req
	}
	if current >= required {
		req.Complete = true
		req.Percent = 100
	} else if current > 0 {
		req.Percent = float64(current) / float64(required) * 100
	}
	return req
}

func accuracyRequirement(exercise ExerciseStats, required float64) CertificateRequirement {
	req := CertificateRequirement{
		Name:     "accuracy",
		Current:  int(exercise.Accuracy),
		Required: int(required),
		Weight:   10,
	}
	// Точность без единой попытки не засчитывается
	if exercise.Total > 0 && exercise.Accuracy >= required {
		req.Complete = true
		req.Percent = 100
	} else if required > 0 && exercise.Accuracy > 0 {
		req.Percent = exercise.Accuracy / required * 100
		if req.Percent > 100 {
			req.Percent = 100
		}
	}
	return req
}
