package services

// Шаг уровневой кривой: каждые 100 звёзд — новый уровень.
const starsPerLevel = 100

// LevelInfoFromStars выводит уровень из суммарных звёзд. Без I/O —
// вызывается синхронно в первой фазе сборки дашборда.
func LevelInfoFromStars(totalStars int) LevelInfo {
	if totalStars < 0 {
		totalStars = 0
	}

	level := totalStars/starsPerLevel + 1
	into := totalStars % starsPerLevel

	return LevelInfo{
		Level:           level,
		StarsIntoLevel:  into,
		StarsToNext:     starsPerLevel - into,
		ProgressPercent: float64(into) / starsPerLevel * 100,
	}
}
