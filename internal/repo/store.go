package repo

import (
	"context"
	"sync"
)

// StoredGroup — снимок группы между прогонами: стабильный id + ключи участников.
type StoredGroup struct {
	GroupID    string
	MemberKeys []string
}

// GroupStore — граница персистентности движка. Load отдаёт группы прошлого
// прогона, Save замещает снимок целиком (никакого частичного коммита).
type GroupStore interface {
	Load(ctx context.Context) ([]StoredGroup, error)
	Save(ctx context.Context, groups []StoredGroup) error
}

// MemoryStore — хранилище в памяти: для тестов и запуска без БД.
type MemoryStore struct {
	mu     sync.Mutex
	groups []StoredGroup
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Load(_ context.Context) ([]StoredGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StoredGroup, len(s.groups))
	for i, g := range s.groups {
		keys := make([]string, len(g.MemberKeys))
		copy(keys, g.MemberKeys)
		out[i] = StoredGroup{GroupID: g.GroupID, MemberKeys: keys}
	}
	return out, nil
}

func (s *MemoryStore) Save(_ context.Context, groups []StoredGroup) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groups = make([]StoredGroup, len(groups))
	for i, g := range groups {
		keys := make([]string, len(g.MemberKeys))
		copy(keys, g.MemberKeys)
		s.groups[i] = StoredGroup{GroupID: g.GroupID, MemberKeys: keys}
	}
	return nil
}
