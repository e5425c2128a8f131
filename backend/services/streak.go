package services

import "time"

// CalculateLoginStreak — чистая функция пересчёта серии входов.
// Сравниваются календарные даты, а не отметки времени: обе стороны
// усекаются до полуночи. Повторный вызов в тот же день ничего не меняет.
func CalculateLoginStreak(current int, lastLogin *time.Time, now time.Time) int {
	if lastLogin == nil {
		return 1
	}

	last := truncateToDay(*lastLogin)
	today := truncateToDay(now)
	days := int(today.Sub(last).Hours() / 24)

	switch days {
	case 0:
		// Сегодня уже заходил
		if current < 1 {
			return 1
		}
		return current
	case 1:
		return current + 1
	default:
		// Пропуск в два и более дня обнуляет серию
		return 1
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// sameCalendarDay сообщает, приходятся ли две отметки на одну дату.
func sameCalendarDay(a, b time.Time) bool {
	return truncateToDay(a).Equal(truncateToDay(b))
}
