package booking

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/Domenick1991/spacevoyager/internal/domain"
	"github.com/Domenick1991/spacevoyager/internal/kafka"
	"github.com/Domenick1991/spacevoyager/internal/pricing"
	"github.com/Domenick1991/spacevoyager/internal/repository"
	"github.com/Domenick1991/spacevoyager/internal/validation"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type BookingUseCase interface {
	Create(ctx context.Context, input domain.BookingInput) (*domain.Booking, error)
	Get(ctx context.Context, id string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	ListByCurrentUser(ctx context.Context) ([]domain.Booking, error)
	Update(ctx context.Context, id string, patch domain.BookingPatch) (*domain.Booking, error)
	Cancel(ctx context.Context, id string) (*domain.Booking, error)
	Delete(ctx context.Context, id string) (bool, error)
	Search(ctx context.Context, filters domain.SearchFilters) ([]domain.Booking, error)
	Stats(ctx context.Context) (domain.Stats, error)
	NextBooking(ctx context.Context) (*domain.Booking, error)
}

// Identity resolves the signed-in user; nil means nobody is signed in.
type Identity interface {
	CurrentUser(ctx context.Context) (*domain.User, error)
}

type Catalog interface {
	Destination(id string) (*domain.Destination, bool)
	Accommodation(id string) (*domain.Accommodation, bool)
	PriceExtras(ids []domain.ExtraID) ([]domain.SelectedExtra, []domain.ExtraID)
}

type Validator interface {
	Validate(in domain.BookingInput) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	bookings           repository.BookingRepository
	users              repository.UserRepository
	identity           Identity
	catalog            Catalog
	validator          Validator
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	logger             logrus.FieldLogger
	now                func() time.Time

	defaultDuration int
	currency        string
	referencePrefix string
}

type BookingServiceOption func(*BookingService)

func WithProducer(producer Producer, bookingTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithValidator(v Validator) BookingServiceOption {
	return func(s *BookingService) {
		s.validator = v
	}
}

func WithDefaults(durationDays int, currency, referencePrefix string) BookingServiceOption {
	return func(s *BookingService) {
		s.defaultDuration = durationDays
		s.currency = currency
		s.referencePrefix = referencePrefix
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	users repository.UserRepository,
	identity Identity,
	catalog Catalog,
	logger logrus.FieldLogger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:        bookings,
		users:           users,
		identity:        identity,
		catalog:         catalog,
		logger:          logger,
		now:             time.Now,
		defaultDuration: pricing.DefaultDurationDays,
		currency:        "USD",
		referencePrefix: "SV-",
	}
	for _, opt := range opts {
		opt(service)
	}
	if service.validator == nil {
		service.validator = validation.NewBookingValidator(service.now)
	}
	if !validation.IsCurrency(service.currency) {
		logger.WithField("currency", service.currency).Warn("unknown currency code, falling back to USD")
		service.currency = "USD"
	}
	return service
}

// Create validates input, prices it from the catalog and stores it for the
// signed-in user. Prices supplied by the client are ignored.
func (s *BookingService) Create(ctx context.Context, input domain.BookingInput) (*domain.Booking, error) {
	if err := s.validator.Validate(input); err != nil {
		return nil, err
	}

	user, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	var problems []string
	destination, ok := s.catalog.Destination(input.Destination)
	if !ok {
		problems = append(problems, fmt.Sprintf("unknown destination %q", input.Destination))
	}
	accommodation, ok := s.catalog.Accommodation(input.Accommodation)
	if !ok {
		problems = append(problems, fmt.Sprintf("unknown accommodation %q", input.Accommodation))
	}
	ids := make([]domain.ExtraID, 0, len(input.Extras))
	for _, e := range input.Extras {
		ids = append(ids, e.ID)
	}
	extras, unknown := s.catalog.PriceExtras(ids)
	for _, id := range unknown {
		problems = append(problems, fmt.Sprintf("unknown extra %q", id))
	}
	if len(problems) > 0 {
		return nil, domain.NewValidationError(problems...)
	}

	departure, _ := validation.ParseDate(input.DepartureDate)
	duration := s.defaultDuration
	if input.Duration != nil {
		duration = *input.Duration
	}
	price := pricing.Compute(pricing.Selection{
		Destination:    destination,
		Accommodation:  accommodation,
		DurationDays:   pricing.Days(duration),
		PassengerCount: input.NumberOfPassengers,
		Extras:         extras,
	})

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	reference, err := s.newReference()
	if err != nil {
		return nil, err
	}

	now := s.now()
	passengers := input.Passengers
	if passengers == nil {
		passengers = []domain.Passenger{}
	}
	if extras == nil {
		extras = []domain.SelectedExtra{}
	}
	booking := &domain.Booking{
		ID:                 id.String(),
		UserID:             user.ID,
		Status:             domain.BookingStatusConfirmed,
		CreatedAt:          now,
		UpdatedAt:          now,
		Destination:        destination.ID,
		DepartureDate:      departure,
		Duration:           duration,
		Passengers:         passengers,
		NumberOfPassengers: input.NumberOfPassengers,
		Accommodation:      accommodation.ID,
		ContactInfo: domain.ContactInfo{
			FirstName: strings.TrimSpace(input.FirstName),
			LastName:  strings.TrimSpace(input.LastName),
			Email:     strings.TrimSpace(input.Email),
			Phone:     strings.TrimSpace(input.Phone),
		},
		SpecialRequirements: input.SpecialRequirements,
		Extras:              extras,
		BasePrice:           price.Base,
		AccommodationPrice:  price.Accommodation,
		ExtrasPrice:         price.Extras,
		TotalPrice:          price.Total,
		Currency:            s.currency,
		BookingReference:    reference,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("store booking: %w", err)
	}
	if err := s.users.AddBooking(ctx, user.ID, booking.ID); err != nil {
		if delErr := s.bookings.Delete(ctx, booking.ID, nil); delErr != nil {
			s.logger.WithError(delErr).WithField("booking_id", booking.ID).Error("failed to roll back booking")
		}
		return nil, fmt.Errorf("link booking to user: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"user_id":    user.ID,
		"reference":  booking.BookingReference,
	}).Info("booking created")

	s.publish(ctx, kafka.EventBookingCreated, booking)
	return booking, nil
}

func (s *BookingService) Get(ctx context.Context, id string) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *BookingService) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

func (s *BookingService) ListByCurrentUser(ctx context.Context) ([]domain.Booking, error) {
	user, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.bookings.ListByUser(ctx, user.ID)
}

func (s *BookingService) Update(ctx context.Context, id string, patch domain.BookingPatch) (*domain.Booking, error) {
	return s.update(ctx, id, "update", patch, kafka.EventBookingUpdated)
}

func (s *BookingService) Cancel(ctx context.Context, id string) (*domain.Booking, error) {
	status := domain.BookingStatusCancelled
	return s.update(ctx, id, "cancel", domain.BookingPatch{Status: &status}, kafka.EventBookingCancelled)
}

func (s *BookingService) update(ctx context.Context, id, action string, patch domain.BookingPatch, event string) (*domain.Booking, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid status %q", *patch.Status))
	}
	if patch.DepartureDate != nil && validation.IsBefore(*patch.DepartureDate, validation.StartOfDay(s.now())) {
		return nil, domain.NewValidationError("departure date cannot be in the past")
	}
	user, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := s.bookings.Update(ctx, id, func(b *domain.Booking) error {
		if b.UserID != user.ID {
			return &domain.AuthorizationError{Action: action, BookingID: id}
		}
		now := s.now()
		patch.Apply(b, now)
		b.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{"booking_id": id, "user_id": user.ID}).Infof("booking %s", event)
	s.publish(ctx, event, updated)
	return updated, nil
}

func (s *BookingService) Delete(ctx context.Context, id string) (bool, error) {
	user, err := s.requireUser(ctx)
	if err != nil {
		return false, err
	}

	var removed domain.Booking
	err = s.bookings.Delete(ctx, id, func(b *domain.Booking) error {
		if b.UserID != user.ID {
			return &domain.AuthorizationError{Action: "delete", BookingID: id}
		}
		removed = *b
		return nil
	})
	if err != nil {
		return false, err
	}

	if err := s.users.RemoveBooking(ctx, user.ID, id); err != nil {
		s.logger.WithError(err).WithField("booking_id", id).Warn("failed to unlink deleted booking from user")
	}
	s.logger.WithFields(logrus.Fields{"booking_id": id, "user_id": user.ID}).Info("booking deleted")
	s.publish(ctx, kafka.EventBookingDeleted, &removed)
	return true, nil
}

// Search filters the current user's bookings. Destination is a case-insensitive
// substring, status an exact match, and the date range is inclusive.
func (s *BookingService) Search(ctx context.Context, filters domain.SearchFilters) ([]domain.Booking, error) {
	all, err := s.ListByCurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(filters.Destination))
	result := make([]domain.Booking, 0, len(all))
	for _, b := range all {
		if needle != "" && !strings.Contains(strings.ToLower(b.Destination), needle) {
			continue
		}
		if filters.Status != "" && b.Status != filters.Status {
			continue
		}
		if filters.DateFrom != nil && validation.IsBefore(b.DepartureDate, *filters.DateFrom) {
			continue
		}
		if filters.DateTo != nil && validation.IsAfter(b.DepartureDate, *filters.DateTo) {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

func (s *BookingService) Stats(ctx context.Context) (domain.Stats, error) {
	all, err := s.ListByCurrentUser(ctx)
	if err != nil {
		return domain.Stats{}, err
	}

	now := s.now()
	stats := domain.Stats{Total: len(all)}
	for _, b := range all {
		switch b.Status {
		case domain.BookingStatusConfirmed:
			stats.Confirmed++
			stats.TotalSpent += b.TotalPrice
			if validation.IsAfter(b.DepartureDate, now) {
				stats.Upcoming++
			} else {
				stats.Past++
			}
		case domain.BookingStatusCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

// NextBooking returns nil when no confirmed departure lies ahead.
func (s *BookingService) NextBooking(ctx context.Context) (*domain.Booking, error) {
	all, err := s.ListByCurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	upcoming := make([]domain.Booking, 0, len(all))
	for _, b := range all {
		if b.Status == domain.BookingStatusConfirmed && validation.IsAfter(b.DepartureDate, now) {
			upcoming = append(upcoming, b)
		}
	}
	if len(upcoming) == 0 {
		return nil, nil
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].DepartureDate.Before(upcoming[j].DepartureDate)
	})
	return &upcoming[0], nil
}

func (s *BookingService) requireUser(ctx context.Context) (*domain.User, error) {
	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, &domain.AuthenticationError{}
	}
	return user, nil
}

// newReference is not checked for collisions; 36^8 codes per prefix.
func (s *BookingService) newReference() (string, error) {
	base := big.NewInt(int64(len(referenceAlphabet)))
	var b strings.Builder
	b.WriteString(s.referencePrefix)
	for i := 0; i < 8; i++ {
		n, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", fmt.Errorf("generate reference: %w", err)
		}
		b.WriteByte(referenceAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// publish never fails the operation; a lost event only delays the ticket e-mail.
func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID,
		Reference:  booking.BookingReference,
		UserID:     booking.UserID,
		Email:      booking.ContactInfo.Email,
		Status:     string(booking.Status),
		OccurredAt: s.now(),
		Booking:    booking,
	}
	log := s.logger.WithFields(logrus.Fields{"booking_id": booking.ID, "event": eventType})
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.ID, event); err != nil {
		log.WithError(err).Warn("failed to publish booking event")
		return
	}
	if s.notificationsTopic != "" && eventType == kafka.EventBookingCreated {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.ID, event); err != nil {
			log.WithError(err).Warn("failed to publish notification")
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
