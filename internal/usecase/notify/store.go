package notify

import (
	"sync"
	"time"

	"svitlo-bot/internal/domain"
)

// AlertKey однозначно определяет одно предупреждение о границе интервала.
// Моменты хранятся как unix-секунды, чтобы ключ был пригоден для map.
type AlertKey struct {
	TGUserID  int64
	Queue     string
	StartUnix int64
	EndUnix   int64
	Edge      domain.AlertEdge
}

type pairKey struct {
	TGUserID int64
	Queue    string
}

// Store — состояние планировщика в памяти процесса: отметки уже отправленных
// предупреждений и отпечатки последних увиденных графиков. Состояние
// сознательно не переживает рестарт: после перезапуска подписчики получат по
// одному повторному уведомлению об актуальном графике, что безопаснее, чем
// тянуть устаревшие отметки.
type Store struct {
	mu           sync.Mutex
	records      map[AlertKey]struct{}
	fingerprints map[pairKey]string
}

func NewStore() *Store {
	return &Store{
		records:      make(map[AlertKey]struct{}),
		fingerprints: make(map[pairKey]string),
	}
}

// MarkOnce атомарно помечает предупреждение отправленным. Возвращает true
// только первому вызову с данным ключом: это и даёт гарантию «не более одного
// раза» при параллельной обработке пар.
func (s *Store) MarkOnce(key AlertKey) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.records[key]; seen {
		return false
	}
	s.records[key] = struct{}{}
	return true
}

// UpdateFingerprint атомарно сохраняет отпечаток графика пары и возвращает
// true, если он отличается от предыдущего (включая первый увиденный).
func (s *Store) UpdateFingerprint(tgUserID int64, queue, fingerprint string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{TGUserID: tgUserID, Queue: queue}
	if s.fingerprints[key] == fingerprint {
		return false
	}
	s.fingerprints[key] = fingerprint
	return true
}

// Prune удаляет отметки интервалов, полностью завершившихся до before.
// Отпечатки не трогаем: они перетираются при следующем изменении графика.
func (s *Store) Prune(before time.Time) {
	cutoff := before.Unix()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.records {
		if key.EndUnix < cutoff {
			delete(s.records, key)
		}
	}
}
