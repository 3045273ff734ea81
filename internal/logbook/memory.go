package logbook

import "sync"

// Memory keeps the newest entries of each stream in memory.
type Memory struct {
	mu    sync.RWMutex
	limit int
	logs  map[Type][]Entry
}

// NewMemory creates a store holding up to limit entries per stream.
func NewMemory(limit int) *Memory {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Memory{limit: limit, logs: make(map[Type][]Entry)}
}

func (m *Memory) Append(t Type, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	logs := append(m.logs[t], e)
	if over := len(logs) - m.limit; over > 0 {
		logs = append(logs[:0:0], logs[over:]...)
	}
	m.logs[t] = logs
	return nil
}

func (m *Memory) Page(t Type, offset, limit int) ([]Entry, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	logs := m.logs[t]
	total := len(logs)
	if offset >= total || limit <= 0 {
		return []Entry{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	page := make([]Entry, 0, end-offset)
	for i := total - 1 - offset; i >= total-end; i-- {
		page = append(page, logs[i])
	}
	return page, total, nil
}

func (m *Memory) Close() error { return nil }
