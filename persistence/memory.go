// persistence/memory.go
package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/wfunc/fishduel/models"
)

// Memory 内存实现, 用于测试和未配置数据库时的排行榜
type Memory struct {
	mutex   sync.RWMutex
	rooms   []models.RoomRecord
	catches []models.CatchRecord
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) SaveRoomRecord(_ context.Context, rec models.RoomRecord) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	rec.Players = append([]string(nil), rec.Players...)
	m.rooms = append(m.rooms, rec)
	return nil
}

func (m *Memory) SaveCatchRecord(_ context.Context, rec models.CatchRecord) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.catches = append(m.catches, rec)
	return nil
}

func (m *Memory) TopCatchers(_ context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	m.mutex.RLock()
	byName := make(map[string]*models.LeaderboardEntry)
	for _, c := range m.catches {
		e, ok := byName[c.Username]
		if !ok {
			e = &models.LeaderboardEntry{Username: c.Username}
			byName[c.Username] = e
		}
		e.Catches++
		e.TotalPoints += c.Points
	}
	m.mutex.RUnlock()

	entries := make([]models.LeaderboardEntry, 0, len(byName))
	for _, e := range byName {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalPoints != entries[j].TotalPoints {
			return entries[i].TotalPoints > entries[j].TotalPoints
		}
		return entries[i].Username < entries[j].Username
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Rooms 返回房间记录副本
func (m *Memory) Rooms() []models.RoomRecord {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return append([]models.RoomRecord(nil), m.rooms...)
}

// Catches 返回钓鱼记录副本
func (m *Memory) Catches() []models.CatchRecord {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return append([]models.CatchRecord(nil), m.catches...)
}

func (m *Memory) Close() error { return nil }
