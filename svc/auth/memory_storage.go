package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage is a Storage kept in process memory.
type MemoryStorage struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]*User
	byEmail  map[string]uuid.UUID
	codes    map[uuid.UUID]*OneTimeCode
	userCode map[uuid.UUID][]uuid.UUID
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		users:    make(map[uuid.UUID]*User),
		byEmail:  make(map[string]uuid.UUID),
		codes:    make(map[uuid.UUID]*OneTimeCode),
		userCode: make(map[uuid.UUID][]uuid.UUID),
	}
}

func cloneUser(u *User) *User {
	c := *u
	c.PasswordHash = append([]byte(nil), u.PasswordHash...)
	return &c
}

func (m *MemoryStorage) CreateUser(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byEmail[user.EmailHash]; ok {
		return ErrEmailTaken
	}
	m.users[user.ID] = cloneUser(user)
	m.byEmail[user.EmailHash] = user.ID
	return nil
}

func (m *MemoryStorage) GetUserByID(_ context.Context, id uuid.UUID) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (m *MemoryStorage) GetUserByEmailHash(_ context.Context, hash string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[hash]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(m.users[id]), nil
}

func (m *MemoryStorage) UpdateMfa(_ context.Context, id uuid.UUID, method MfaMethod, sealedSecret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.MfaMethod = method
	u.MfaEnabled = method != MfaNone
	u.MfaSecret = sealedSecret
	return nil
}

func (m *MemoryStorage) CreateCode(_ context.Context, code *OneTimeCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[code.UserID]; !ok {
		return ErrNotFound
	}
	c := *code
	m.codes[c.ID] = &c
	m.userCode[c.UserID] = append(m.userCode[c.UserID], c.ID)
	return nil
}

func (m *MemoryStorage) FindValidCode(_ context.Context, userID uuid.UUID, code string, now time.Time) (*OneTimeCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var newest *OneTimeCode
	for _, id := range m.userCode[userID] {
		c := m.codes[id]
		if c == nil || c.Code != code || !c.ValidAt(now) {
			continue
		}
		if newest == nil || c.CreatedAt.After(newest.CreatedAt) {
			newest = c
		}
	}
	if newest == nil {
		return nil, ErrNotFound
	}
	out := *newest
	return &out, nil
}

func (m *MemoryStorage) MarkCodeUsed(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.codes[id]
	if !ok || c.Used {
		return false, nil
	}
	c.Used = true
	return true, nil
}

func (m *MemoryStorage) PurgeExpiredCodes(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, c := range m.codes {
		if c.ExpiresAt.Before(before) {
			delete(m.codes, id)
			n++
		}
	}
	if n > 0 {
		for uid, ids := range m.userCode {
			kept := ids[:0]
			for _, id := range ids {
				if _, ok := m.codes[id]; ok {
					kept = append(kept, id)
				}
			}
			m.userCode[uid] = kept
		}
	}
	return n, nil
}
