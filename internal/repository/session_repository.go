package repository

import (
	"context"

	"github.com/Domenick1991/spacevoyager/internal/domain"
	"github.com/Domenick1991/spacevoyager/internal/storage"
)

// SessionRepository persists the signed-in user across restarts.
type SessionRepository interface {
	Current(ctx context.Context) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
	Clear(ctx context.Context) error
}

// DraftRepository holds the single in-progress booking draft.
type DraftRepository interface {
	Load(ctx context.Context) (*domain.Draft, error)
	Save(ctx context.Context, draft *domain.Draft) error
	Delete(ctx context.Context) error
}

type StoreSessionRepository struct {
	store storage.Store
}

func NewSessionRepository(store storage.Store) SessionRepository {
	return &StoreSessionRepository{store: store}
}

// Current returns nil when nobody is signed in.
func (r *StoreSessionRepository) Current(ctx context.Context) (*domain.User, error) {
	u, ok, err := storage.GetJSON[domain.User](ctx, r.store, storage.KeyCurrentUser)
	if err != nil || !ok {
		return nil, err
	}
	return &u, nil
}

func (r *StoreSessionRepository) Set(ctx context.Context, user *domain.User) error {
	return storage.PutJSON(ctx, r.store, storage.KeyCurrentUser, user)
}

func (r *StoreSessionRepository) Clear(ctx context.Context) error {
	return r.store.Delete(ctx, storage.KeyCurrentUser)
}

type StoreDraftRepository struct {
	store storage.Store
}

func NewDraftRepository(store storage.Store) DraftRepository {
	return &StoreDraftRepository{store: store}
}

// Load returns nil when no draft was saved.
func (r *StoreDraftRepository) Load(ctx context.Context) (*domain.Draft, error) {
	d, ok, err := storage.GetJSON[domain.Draft](ctx, r.store, storage.KeyDraft)
	if err != nil || !ok {
		return nil, err
	}
	return &d, nil
}

func (r *StoreDraftRepository) Save(ctx context.Context, draft *domain.Draft) error {
	return storage.PutJSON(ctx, r.store, storage.KeyDraft, draft)
}

func (r *StoreDraftRepository) Delete(ctx context.Context) error {
	return r.store.Delete(ctx, storage.KeyDraft)
}

var (
	_ SessionRepository = (*StoreSessionRepository)(nil)
	_ DraftRepository   = (*StoreDraftRepository)(nil)
)
