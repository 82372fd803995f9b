package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/spacevoyager/internal/domain"
	"github.com/Domenick1991/spacevoyager/internal/storage"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	// Update applies fn to the stored booking inside one atomic write.
	Update(ctx context.Context, id string, fn func(*domain.Booking) error) (*domain.Booking, error)
	// Delete removes the booking if check accepts it.
	Delete(ctx context.Context, id string, check func(*domain.Booking) error) error
}

// errDuplicateID guards against appending the same identifier twice.
var errDuplicateID = errors.New("booking id already exists")

type StoreBookingRepository struct {
	store storage.Store
}

func NewBookingRepository(store storage.Store) BookingRepository {
	return &StoreBookingRepository{store: store}
}

func (r *StoreBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	return storage.UpdateJSON(ctx, r.store, storage.KeyBookings, func(all *[]domain.Booking) error {
		for _, b := range *all {
			if b.ID == booking.ID {
				return errDuplicateID
			}
		}
		*all = append(*all, *booking)
		return nil
	})
}

func (r *StoreBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	all, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, &domain.NotFoundError{Kind: "booking", ID: id}
}

func (r *StoreBookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	all, err := r.all(ctx)
	if err != nil {
		return nil, err
	}
	owned := make([]domain.Booking, 0)
	for _, b := range all {
		if b.UserID == userID {
			owned = append(owned, b)
		}
	}
	return owned, nil
}

func (r *StoreBookingRepository) Update(ctx context.Context, id string, fn func(*domain.Booking) error) (*domain.Booking, error) {
	var updated domain.Booking
	err := storage.UpdateJSON(ctx, r.store, storage.KeyBookings, func(all *[]domain.Booking) error {
		for i := range *all {
			if (*all)[i].ID != id {
				continue
			}
			if err := fn(&(*all)[i]); err != nil {
				return err
			}
			updated = (*all)[i]
			return nil
		}
		return &domain.NotFoundError{Kind: "booking", ID: id}
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *StoreBookingRepository) Delete(ctx context.Context, id string, check func(*domain.Booking) error) error {
	return storage.UpdateJSON(ctx, r.store, storage.KeyBookings, func(all *[]domain.Booking) error {
		for i := range *all {
			if (*all)[i].ID != id {
				continue
			}
			if check != nil {
				if err := check(&(*all)[i]); err != nil {
					return err
				}
			}
			*all = append((*all)[:i], (*all)[i+1:]...)
			return nil
		}
		return &domain.NotFoundError{Kind: "booking", ID: id}
	})
}

func (r *StoreBookingRepository) all(ctx context.Context) ([]domain.Booking, error) {
	all, _, err := storage.GetJSON[[]domain.Booking](ctx, r.store, storage.KeyBookings)
	return all, err
}

var _ BookingRepository = (*StoreBookingRepository)(nil)
