package cache

import (
	"sync"
	"time"
)

// Entry — запись кэша. Жизненный цикл:
//   - "свежая", пока now < ExpiresAt;
//   - "устаревшая, но пригодная", пока now - CreatedAt < staleWindow
//     (отдаётся сразу, обновление уходит в фон);
//   - дальше игнорируется как промах.
type Entry struct {
	Value     interface{}
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Fresh сообщает, действует ли ещё TTL записи.
func (e Entry) Fresh(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// Usable сообщает, можно ли отдать запись как устаревшую.
func (e Entry) Usable(now time.Time, staleWindow time.Duration) bool {
	return now.Sub(e.CreatedAt) < staleWindow
}

// Store — процессный key-value кэш с TTL.
// Создаётся один раз при старте и передаётся зависимостью,
// чтобы тесты могли подменить его изолированным экземпляром.
type Store struct {
	mu         sync.RWMutex
	entries    map[string]Entry
	refreshing map[string]bool
	now        func() time.Time
}

func New() *Store {
	return &Store{
		entries:    make(map[string]Entry),
		refreshing: make(map[string]bool),
		now:        time.Now,
	}
}

// Get возвращает значение только пока запись свежая.
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok || !entry.Fresh(s.now()) {
		return nil, false
	}
	return entry.Value, true
}

// Entry возвращает запись независимо от свежести — для проверок устаревания.
func (s *Store) Entry(key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	return entry, ok
}

// Set перезаписывает запись целиком с новым CreatedAt.
func (s *Store) Set(key string, value interface{}, ttl time.Duration) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = Entry{
		Value:     value,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Delete удаляет запись безусловно (используется при refresh=1).
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

// BeginRefresh помечает ключ как обновляемый в фоне.
// Возвращает false, если обновление уже идёт: несколько читателей
// устаревшей записи не должны запускать несколько пересчётов.
func (s *Store) BeginRefresh(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refreshing[key] {
		return false
	}
	s.refreshing[key] = true
	return true
}

// EndRefresh снимает пометку обновления.
func (s *Store) EndRefresh(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.refreshing, key)
}
