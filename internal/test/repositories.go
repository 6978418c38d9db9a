package test

import (
	"context"
	"sync"

	domainErrors "github.com/polkiloo/retailpos/internal/domain/errors"
	"github.com/polkiloo/retailpos/internal/domain/model"
	"github.com/polkiloo/retailpos/internal/domain/repository"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.User)
	}
	if _, exists := s.Users[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user := &model.User{ID: s.Next, Login: login, PasswordHash: passwordHash, Role: role}
	s.Next++
	s.Users[login] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByLogin fetches user by login or returns not found.
func (s *UserRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[login]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// OutboxRepositoryStub serves queued batches of events and records acknowledgements.
type OutboxRepositoryStub struct {
	mu        sync.Mutex
	Batches   [][]model.OutboxEvent
	ListErr   error
	MarkErr   error
	Published []string
	Appended  []model.OutboxEvent
	calls     int
}

// Append records the event.
func (s *OutboxRepositoryStub) Append(_ context.Context, event model.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Appended = append(s.Appended, event)
	return nil
}

// ListPending returns the next configured batch, then nothing.
func (s *OutboxRepositoryStub) ListPending(_ context.Context, limit int) ([]model.OutboxEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	if s.calls >= len(s.Batches) {
		return nil, nil
	}
	batch := s.Batches[s.calls]
	s.calls++
	if limit > 0 && len(batch) > limit {
		batch = batch[:limit]
	}
	return batch, nil
}

// MarkPublished records acknowledged ids.
func (s *OutboxRepositoryStub) MarkPublished(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.MarkErr != nil {
		return s.MarkErr
	}
	s.Published = append(s.Published, ids...)
	return nil
}

// PublishedIDs returns a copy of acknowledged ids.
func (s *OutboxRepositoryStub) PublishedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Published...)
}

// OutboxStoreStub is a Store whose only working repository is the outbox.
// Transactions run fn directly against the stub.
type OutboxStoreStub struct {
	repository.Factory
	Events *OutboxRepositoryStub
}

// Outbox returns the configured outbox stub.
func (s *OutboxStoreStub) Outbox() repository.OutboxRepository { return s.Events }

// WithinTransaction invokes fn with the stub itself.
func (s *OutboxStoreStub) WithinTransaction(_ context.Context, fn func(tx repository.Factory) error) error {
	return fn(s)
}
