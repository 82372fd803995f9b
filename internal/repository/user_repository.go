package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Domenick1991/spacevoyager/internal/domain"
	"github.com/Domenick1991/spacevoyager/internal/storage"
)

var ErrEmailExists = errors.New("email already exists")

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	// GetOrCreate returns the user registered under user.Email, storing user when none exists.
	GetOrCreate(ctx context.Context, user *domain.User) (*domain.User, bool, error)
	AddBooking(ctx context.Context, userID, bookingID string) error
	RemoveBooking(ctx context.Context, userID, bookingID string) error
}

type StoreUserRepository struct {
	store storage.Store
}

func NewUserRepository(store storage.Store) UserRepository {
	return &StoreUserRepository{store: store}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *StoreUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.find(ctx, func(u domain.User) bool { return u.ID == id }, id)
}

func (r *StoreUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = NormalizeEmail(email)
	return r.find(ctx, func(u domain.User) bool { return NormalizeEmail(u.Email) == email }, email)
}

func (r *StoreUserRepository) Create(ctx context.Context, user *domain.User) error {
	return storage.UpdateJSON(ctx, r.store, storage.KeyUsers, func(all *[]domain.User) error {
		email := NormalizeEmail(user.Email)
		for _, u := range *all {
			if NormalizeEmail(u.Email) == email {
				return ErrEmailExists
			}
		}
		*all = append(*all, *user)
		return nil
	})
}

func (r *StoreUserRepository) GetOrCreate(ctx context.Context, user *domain.User) (*domain.User, bool, error) {
	var (
		found   domain.User
		created bool
	)
	err := storage.UpdateJSON(ctx, r.store, storage.KeyUsers, func(all *[]domain.User) error {
		email := NormalizeEmail(user.Email)
		for _, u := range *all {
			if NormalizeEmail(u.Email) == email {
				found = u
				return nil
			}
		}
		*all = append(*all, *user)
		found, created = *user, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &found, created, nil
}

func (r *StoreUserRepository) AddBooking(ctx context.Context, userID, bookingID string) error {
	return r.modify(ctx, userID, func(u *domain.User) {
		u.Bookings = append(u.Bookings, bookingID)
	})
}

func (r *StoreUserRepository) RemoveBooking(ctx context.Context, userID, bookingID string) error {
	return r.modify(ctx, userID, func(u *domain.User) {
		kept := u.Bookings[:0]
		for _, id := range u.Bookings {
			if id != bookingID {
				kept = append(kept, id)
			}
		}
		u.Bookings = kept
	})
}

func (r *StoreUserRepository) modify(ctx context.Context, userID string, fn func(*domain.User)) error {
	return storage.UpdateJSON(ctx, r.store, storage.KeyUsers, func(all *[]domain.User) error {
		for i := range *all {
			if (*all)[i].ID == userID {
				fn(&(*all)[i])
				return nil
			}
		}
		return &domain.NotFoundError{Kind: "user", ID: userID}
	})
}

func (r *StoreUserRepository) find(ctx context.Context, match func(domain.User) bool, ref string) (*domain.User, error) {
	all, _, err := storage.GetJSON[[]domain.User](ctx, r.store, storage.KeyUsers)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if match(all[i]) {
			return &all[i], nil
		}
	}
	return nil, &domain.NotFoundError{Kind: "user", ID: ref}
}

var _ UserRepository = (*StoreUserRepository)(nil)
