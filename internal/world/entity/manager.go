package entity

import (
	"sort"
	"sync"
)

// Manager хранит сущности текущей сессии.
// Создание немедленное, удаление двухфазное: RequestDestroy ставит сущность в очередь,
// ApplyPending (раз за кадр, на границе кадра) удаляет её и уведомляет хуки.
type Manager struct {
	entities map[ID]*Entity
	pending  map[ID]struct{}
	hooks    []Hook
	nextID   ID
	mu       sync.RWMutex
}

// NewManager создаёт пустой менеджер сущностей
func NewManager() *Manager {
	return &Manager{
		entities: make(map[ID]*Entity),
		pending:  make(map[ID]struct{}),
		nextID:   1,
	}
}

// AddHook подключает внешний движок к жизненному циклу сущностей
func (m *Manager) AddHook(h Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, h)
}

// Spawn регистрирует новую сущность и возвращает её ID
func (m *Manager) Spawn(d Descriptor) ID {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	e := &Entity{ID: id, Descriptor: d}
	m.entities[id] = e
	hooks := append([]Hook(nil), m.hooks...)
	m.mu.Unlock()

	for _, h := range hooks {
		h.OnSpawn(e)
	}
	return id
}

// Get возвращает сущность по ID
func (m *Manager) Get(id ID) (*Entity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entities[id]
	return e, ok
}

// CategoryOf возвращает категорию сущности, CategoryNone для неизвестного ID
func (m *Manager) CategoryOf(id ID) Category {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if e, ok := m.entities[id]; ok {
		return e.Category
	}
	return CategoryNone
}

// RequestDestroy ставит сущность в очередь на удаление.
// Возвращает false, если сущности нет или она уже в очереди.
func (m *Manager) RequestDestroy(id ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entities[id]; !ok {
		return false
	}
	if _, queued := m.pending[id]; queued {
		return false
	}
	m.pending[id] = struct{}{}
	return true
}

// IsPendingDestroy сообщает, ожидает ли сущность удаления
func (m *Manager) IsPendingDestroy(id ID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.pending[id]
	return ok
}

// DestroyTagged ставит в очередь все сущности с меткой lifecycle, кроме перечисленных в keep.
// Возвращает число новых запросов на удаление.
func (m *Manager) DestroyTagged(lifecycle Lifecycle, keep ...ID) int {
	skip := make(map[ID]struct{}, len(keep))
	for _, id := range keep {
		skip[id] = struct{}{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	requested := 0
	for id, e := range m.entities {
		if e.Lifecycle != lifecycle {
			continue
		}
		if _, ok := skip[id]; ok {
			continue
		}
		if _, queued := m.pending[id]; queued {
			continue
		}
		m.pending[id] = struct{}{}
		requested++
	}
	return requested
}

// ApplyPending удаляет все сущности из очереди и возвращает их количество
func (m *Manager) ApplyPending() int {
	m.mu.Lock()
	if len(m.pending) == 0 {
		m.mu.Unlock()
		return 0
	}

	ids := make([]ID, 0, len(m.pending))
	for id := range m.pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	removed := make([]*Entity, 0, len(ids))
	for _, id := range ids {
		if e, ok := m.entities[id]; ok {
			removed = append(removed, e)
			delete(m.entities, id)
		}
	}
	m.pending = make(map[ID]struct{})
	hooks := append([]Hook(nil), m.hooks...)
	m.mu.Unlock()

	for _, e := range removed {
		for _, h := range hooks {
			h.OnDespawn(e)
		}
	}
	return len(removed)
}

// Query возвращает сущности указанной категории в порядке возрастания ID
func (m *Manager) Query(category Category) []*Entity {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Entity
	for _, e := range m.entities {
		if e.Category == category {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// First возвращает сущность-одиночку указанной категории (с наименьшим ID)
func (m *Manager) First(category Category) (*Entity, bool) {
	found := m.Query(category)
	if len(found) == 0 {
		return nil, false
	}
	return found[0], true
}

// Tagged возвращает ID всех сущностей с указанной меткой жизненного цикла
func (m *Manager) Tagged(lifecycle Lifecycle) []ID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []ID
	for id, e := range m.entities {
		if e.Lifecycle == lifecycle {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Count возвращает общее число зарегистрированных сущностей (включая ожидающие удаления)
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entities)
}

// GetStats возвращает статистику по сущностям
func (m *Manager) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := make(map[string]interface{})
	stats["total_entities"] = len(m.entities)
	stats["pending_destroy"] = len(m.pending)

	// Статистика по категориям
	byCategory := make(map[string]int)
	for _, e := range m.entities {
		byCategory[e.Category.String()]++
	}
	stats["categories"] = byCategory

	stats["hooks"] = len(m.hooks)
	return stats
}
