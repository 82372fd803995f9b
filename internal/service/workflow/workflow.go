// Package workflow drives one booking form: it keeps the selections, reprices
// on every change, saves drafts and submits the booking.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Domenick1991/spacevoyager/internal/domain"
	"github.com/Domenick1991/spacevoyager/internal/pricing"
	"github.com/Domenick1991/spacevoyager/internal/repository"
	"github.com/Domenick1991/spacevoyager/internal/ticket"
	"github.com/Domenick1991/spacevoyager/internal/validation"
	"github.com/sirupsen/logrus"
)

const maxPassengers = 10

var ErrPassengerIndex = errors.New("passenger index out of range")

type WorkflowUseCase interface {
	Start(ctx context.Context) error
	State() State
	Apply(ctx context.Context, change Change) (State, error)
	Quote(q QuoteRequest) (domain.PriceBreakdown, error)
	SetPassengerCount(n int) (State, error)
	AddPassenger() (State, error)
	RemovePassenger(index int) (State, error)
	UpdatePassenger(index int, p domain.Passenger) (State, error)
	SaveDraft(ctx context.Context) error
	RestoreDraft(ctx context.Context) (bool, error)
	Submit(ctx context.Context) (*Submission, error)
}

type Catalog interface {
	Wait(ctx context.Context) error
	Destination(id string) (*domain.Destination, bool)
	Accommodation(id string) (*domain.Accommodation, bool)
	PriceExtras(ids []domain.ExtraID) ([]domain.SelectedExtra, []domain.ExtraID)
}

type BookingCreator interface {
	Create(ctx context.Context, input domain.BookingInput) (*domain.Booking, error)
}

type Identity interface {
	IsAuthenticated(ctx context.Context) bool
}

type TicketRenderer interface {
	Render(b *domain.Booking) string
}

// Form holds raw form values as entered. Duration stays a string so that a
// non-numeric entry can fall back to the default stay.
type Form struct {
	Destination         string             `json:"destination"`
	DepartureDate       string             `json:"departureDate"`
	Duration            string             `json:"duration"`
	Accommodation       string             `json:"accommodation"`
	FirstName           string             `json:"firstName"`
	LastName            string             `json:"lastName"`
	Email               string             `json:"email"`
	Phone               string             `json:"phone"`
	SpecialRequirements string             `json:"specialRequirements"`
	Passengers          []domain.Passenger `json:"passengers"`
	Extras              []domain.ExtraID   `json:"extras"`
}

// Change carries the fields to overwrite; nil fields are kept.
type Change struct {
	Destination         *string            `json:"destination,omitempty"`
	DepartureDate       *string            `json:"departureDate,omitempty"`
	Duration            *string            `json:"duration,omitempty"`
	Accommodation       *string            `json:"accommodation,omitempty"`
	FirstName           *string            `json:"firstName,omitempty"`
	LastName            *string            `json:"lastName,omitempty"`
	Email               *string            `json:"email,omitempty"`
	Phone               *string            `json:"phone,omitempty"`
	SpecialRequirements *string            `json:"specialRequirements,omitempty"`
	NumberOfPassengers  *int               `json:"numberOfPassengers,omitempty"`
	Extras              *[]domain.ExtraID  `json:"extras,omitempty"`
	Passengers          []domain.Passenger `json:"passengers,omitempty"`
}

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
	NoticeInfo    NoticeLevel = "info"
)

type Notice struct {
	Level     NoticeLevel `json:"level"`
	Message   string      `json:"message"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

type State struct {
	Form               Form                  `json:"form"`
	NumberOfPassengers int                   `json:"numberOfPassengers"`
	Price              domain.PriceBreakdown `json:"price"`
	FieldErrors        map[string][]string   `json:"fieldErrors,omitempty"`
	Notices            []Notice              `json:"notices"`
	DraftSavedAt       *time.Time            `json:"draftSavedAt,omitempty"`
}

type QuoteRequest struct {
	Destination    string           `json:"destination"`
	Accommodation  string           `json:"accommodation"`
	DurationDays   *int             `json:"duration,omitempty"`
	PassengerCount int              `json:"numberOfPassengers"`
	Extras         []domain.ExtraID `json:"extras"`
}

type Submission struct {
	Booking  *domain.Booking `json:"booking"`
	Ticket   string          `json:"-"`
	FileName string          `json:"ticketFileName"`
}

type Controller struct {
	catalog  Catalog
	bookings BookingCreator
	identity Identity
	drafts   repository.DraftRepository
	tickets  TicketRenderer
	engine   *validation.Engine
	logger   logrus.FieldLogger
	now      func() time.Time

	loadTimeout time.Duration
	noticeTTL   time.Duration
	currency    string

	mu           sync.Mutex
	form         Form
	dirty        bool
	price        domain.PriceBreakdown
	notices      []Notice
	draftSavedAt *time.Time
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

func WithNoticeTTL(ttl time.Duration) Option {
	return func(c *Controller) {
		c.noticeTTL = ttl
	}
}

func WithLoadTimeout(timeout time.Duration) Option {
	return func(c *Controller) {
		c.loadTimeout = timeout
	}
}

func WithCurrency(code string) Option {
	return func(c *Controller) {
		c.currency = code
	}
}

func NewController(
	catalog Catalog,
	bookings BookingCreator,
	identity Identity,
	drafts repository.DraftRepository,
	tickets TicketRenderer,
	logger logrus.FieldLogger,
	opts ...Option,
) *Controller {
	c := &Controller{
		catalog:     catalog,
		bookings:    bookings,
		identity:    identity,
		drafts:      drafts,
		tickets:     tickets,
		logger:      logger,
		now:         time.Now,
		loadTimeout: 5 * time.Second,
		noticeTTL:   3 * time.Second,
		currency:    "USD",
		form:        emptyForm(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.engine = validation.NewEngine(validation.WithClock(c.now))
	return c
}

func emptyForm() Form {
	return Form{
		Passengers: []domain.Passenger{{}},
		Extras:     []domain.ExtraID{},
	}
}

// Start waits for the reference data and restores a saved draft. A failed
// load is reported as a notice; the form stays usable with empty catalogs.
func (c *Controller) Start(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, c.loadTimeout)
	defer cancel()
	if err := c.catalog.Wait(waitCtx); err != nil {
		c.logger.WithError(err).Error("reference data unavailable")
		c.mu.Lock()
		c.notify(NoticeError, "Reference data could not be loaded")
		c.mu.Unlock()
	}

	if _, err := c.RestoreDraft(ctx); err != nil {
		return fmt.Errorf("restore draft: %w", err)
	}
	return nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot(nil)
}

// Apply merges change into the form and reprices. Field errors are reported
// only for the fields the change touched. A rejected change leaves the form
// as it was.
func (c *Controller) Apply(ctx context.Context, change Change) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	form := c.form
	form.Passengers = append([]domain.Passenger(nil), c.form.Passengers...)
	touched := map[string]string{}
	set := func(field string, dst *string, v *string) {
		if v != nil {
			*dst = *v
			touched[field] = *v
		}
	}
	set("destination", &form.Destination, change.Destination)
	set("departureDate", &form.DepartureDate, change.DepartureDate)
	set("duration", &form.Duration, change.Duration)
	set("accommodation", &form.Accommodation, change.Accommodation)
	set("firstName", &form.FirstName, change.FirstName)
	set("lastName", &form.LastName, change.LastName)
	set("email", &form.Email, change.Email)
	set("phone", &form.Phone, change.Phone)
	set("specialRequirements", &form.SpecialRequirements, change.SpecialRequirements)

	if change.Extras != nil {
		form.Extras = dedupeExtras(*change.Extras)
	}
	if change.Passengers != nil {
		if len(change.Passengers) == 0 || len(change.Passengers) > maxPassengers {
			return c.snapshot(nil), errPassengerCount()
		}
		form.Passengers = append([]domain.Passenger(nil), change.Passengers...)
		touched["numberOfPassengers"] = strconv.Itoa(len(form.Passengers))
	}
	if change.NumberOfPassengers != nil {
		ps, err := resize(form.Passengers, *change.NumberOfPassengers)
		if err != nil {
			return c.snapshot(nil), err
		}
		form.Passengers = ps
		touched["numberOfPassengers"] = strconv.Itoa(*change.NumberOfPassengers)
	}

	c.form = form
	c.dirty = true
	c.reprice()
	result := c.engine.Validate(touched, validation.BookingFormRules())
	return c.snapshot(result.Errors), nil
}

// Quote prices an arbitrary selection without touching the form.
func (c *Controller) Quote(q QuoteRequest) (domain.PriceBreakdown, error) {
	sel := pricing.Selection{DurationDays: q.DurationDays, PassengerCount: q.PassengerCount}
	var problems []string
	if q.Destination != "" {
		d, ok := c.catalog.Destination(q.Destination)
		if !ok {
			problems = append(problems, fmt.Sprintf("unknown destination %q", q.Destination))
		}
		sel.Destination = d
	}
	if q.Accommodation != "" {
		a, ok := c.catalog.Accommodation(q.Accommodation)
		if !ok {
			problems = append(problems, fmt.Sprintf("unknown accommodation %q", q.Accommodation))
		}
		sel.Accommodation = a
	}
	extras, unknown := c.catalog.PriceExtras(q.Extras)
	for _, id := range unknown {
		problems = append(problems, fmt.Sprintf("unknown extra %q", id))
	}
	if len(problems) > 0 {
		return domain.PriceBreakdown{}, domain.NewValidationError(problems...)
	}
	sel.Extras = extras
	return pricing.Compute(sel), nil
}

func (c *Controller) SetPassengerCount(n int) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ps, err := resize(c.form.Passengers, n)
	if err != nil {
		return c.snapshot(nil), err
	}
	c.form.Passengers = ps
	c.dirty = true
	c.reprice()
	return c.snapshot(nil), nil
}

func (c *Controller) AddPassenger() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ps, err := resize(c.form.Passengers, len(c.form.Passengers)+1)
	if err != nil {
		return c.snapshot(nil), err
	}
	c.form.Passengers = ps
	c.dirty = true
	c.reprice()
	return c.snapshot(nil), nil
}

// RemovePassenger drops the passenger at index; the remaining ones shift down.
func (c *Controller) RemovePassenger(index int) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.form.Passengers) {
		return c.snapshot(nil), ErrPassengerIndex
	}
	if len(c.form.Passengers) == 1 {
		return c.snapshot(nil), domain.NewValidationError("at least one passenger is required")
	}
	c.form.Passengers = append(c.form.Passengers[:index], c.form.Passengers[index+1:]...)
	c.dirty = true
	c.reprice()
	return c.snapshot(nil), nil
}

func (c *Controller) UpdatePassenger(index int, p domain.Passenger) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.form.Passengers) {
		return c.snapshot(nil), ErrPassengerIndex
	}
	c.form.Passengers[index] = p
	c.dirty = true
	return c.snapshot(nil), nil
}

func (c *Controller) SaveDraft(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.saveDraft(ctx); err != nil {
		c.notify(NoticeError, "Draft could not be saved")
		return err
	}
	c.notify(NoticeSuccess, "Draft saved")
	return nil
}

// RestoreDraft replaces the form with the saved draft, if any.
func (c *Controller) RestoreDraft(ctx context.Context) (bool, error) {
	draft, err := c.drafts.Load(ctx)
	if err != nil || draft == nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.form = formFromDraft(draft)
	c.dirty = false
	saved := draft.SavedAt
	c.draftSavedAt = &saved
	c.reprice()
	c.notify(NoticeInfo, "Draft restored")
	c.logger.WithField("saved_at", saved).Info("draft restored")
	return true, nil
}

// RunAutosave saves the draft every interval while a user is signed in and
// the form changed since the last save. It returns when ctx is cancelled.
func (c *Controller) RunAutosave(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.autosave(ctx)
		}
	}
}

func (c *Controller) autosave(ctx context.Context) {
	if !c.identity.IsAuthenticated(ctx) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return
	}
	if err := c.saveDraft(ctx); err != nil {
		c.logger.WithError(err).Warn("autosave failed")
		return
	}
	c.logger.Debug("draft autosaved")
}

// Submit turns the form into a booking. Any failure becomes an error notice;
// nothing is stored unless the booking is fully created.
func (c *Controller) Submit(ctx context.Context) (*Submission, error) {
	c.mu.Lock()
	input := c.input()
	c.mu.Unlock()

	booking, err := c.bookings.Create(ctx, input)
	if err != nil {
		c.mu.Lock()
		c.notify(NoticeError, submitMessage(err))
		c.mu.Unlock()
		return nil, err
	}

	// Draft delete and form reset happen under one lock.
	c.mu.Lock()
	if err := c.drafts.Delete(ctx); err != nil {
		c.logger.WithError(err).Warn("failed to delete draft after submit")
	}
	c.form = emptyForm()
	c.dirty = false
	c.draftSavedAt = nil
	c.reprice()
	c.notify(NoticeSuccess, "Booking confirmed! Reference: "+booking.BookingReference)
	c.mu.Unlock()

	return &Submission{
		Booking:  booking,
		Ticket:   c.tickets.Render(booking),
		FileName: ticket.FileName(booking),
	}, nil
}

func submitMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return "Please log in to complete your booking"
	case errors.Is(err, domain.ErrValidation):
		return "Please fix the following: " + err.Error()
	default:
		return "Booking failed: " + err.Error()
	}
}

func errPassengerCount() error {
	return domain.NewValidationError(fmt.Sprintf("number of passengers must be between 1 and %d", maxPassengers))
}

// resize grows or shrinks the passenger slots to n, keeping existing entries.
func resize(ps []domain.Passenger, n int) ([]domain.Passenger, error) {
	if n < 1 || n > maxPassengers {
		return ps, errPassengerCount()
	}
	out := append([]domain.Passenger(nil), ps...)
	for len(out) < n {
		out = append(out, domain.Passenger{})
	}
	return out[:n], nil
}

func (c *Controller) reprice() {
	sel := pricing.Selection{
		DurationDays:   parseDuration(c.form.Duration),
		PassengerCount: len(c.form.Passengers),
	}
	if d, ok := c.catalog.Destination(c.form.Destination); ok {
		sel.Destination = d
	}
	if a, ok := c.catalog.Accommodation(c.form.Accommodation); ok {
		sel.Accommodation = a
	}
	sel.Extras, _ = c.catalog.PriceExtras(c.form.Extras)
	c.price = pricing.Compute(sel)
}

// parseDuration returns nil for blank, non-numeric or negative input.
func parseDuration(raw string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

func (c *Controller) input() domain.BookingInput {
	extras, _ := c.catalog.PriceExtras(c.form.Extras)
	passengers := append([]domain.Passenger(nil), c.form.Passengers...)
	if allBlank(passengers) {
		passengers = nil
	}
	return domain.BookingInput{
		Destination:         c.form.Destination,
		DepartureDate:       c.form.DepartureDate,
		Duration:            parseDuration(c.form.Duration),
		NumberOfPassengers:  len(c.form.Passengers),
		Accommodation:       c.form.Accommodation,
		FirstName:           c.form.FirstName,
		LastName:            c.form.LastName,
		Email:               c.form.Email,
		Phone:               c.form.Phone,
		SpecialRequirements: c.form.SpecialRequirements,
		Passengers:          passengers,
		Extras:              extras,
		BasePrice:           c.price.Base,
		TotalPrice:          c.price.Total,
		Currency:            c.currency,
	}
}

// allBlank reports whether no passenger details were entered; the booking
// then relies on the lead contact only.
func allBlank(ps []domain.Passenger) bool {
	for _, p := range ps {
		if p.FirstName != "" || p.LastName != "" || p.Email != "" || p.Age != nil {
			return false
		}
	}
	return true
}

func (c *Controller) saveDraft(ctx context.Context) error {
	now := c.now()
	draft := &domain.Draft{
		Destination:         c.form.Destination,
		DepartureDate:       c.form.DepartureDate,
		Duration:            c.form.Duration,
		NumberOfPassengers:  strconv.Itoa(len(c.form.Passengers)),
		Accommodation:       c.form.Accommodation,
		FirstName:           c.form.FirstName,
		LastName:            c.form.LastName,
		Email:               c.form.Email,
		Phone:               c.form.Phone,
		SpecialRequirements: c.form.SpecialRequirements,
		Passengers:          append([]domain.Passenger(nil), c.form.Passengers...),
		Extras:              append([]domain.ExtraID(nil), c.form.Extras...),
		SavedAt:             now,
	}
	if err := c.drafts.Save(ctx, draft); err != nil {
		return err
	}
	c.draftSavedAt = &now
	c.dirty = false
	return nil
}

func formFromDraft(d *domain.Draft) Form {
	f := Form{
		Destination:         d.Destination,
		DepartureDate:       d.DepartureDate,
		Duration:            d.Duration,
		Accommodation:       d.Accommodation,
		FirstName:           d.FirstName,
		LastName:            d.LastName,
		Email:               d.Email,
		Phone:               d.Phone,
		SpecialRequirements: d.SpecialRequirements,
		Passengers:          append([]domain.Passenger(nil), d.Passengers...),
		Extras:              dedupeExtras(d.Extras),
	}
	n, err := strconv.Atoi(d.NumberOfPassengers)
	if err != nil || n < 1 || n > maxPassengers {
		n = len(f.Passengers)
	}
	if n < 1 {
		n = 1
	}
	for len(f.Passengers) < n {
		f.Passengers = append(f.Passengers, domain.Passenger{})
	}
	f.Passengers = f.Passengers[:n]
	return f
}

func dedupeExtras(ids []domain.ExtraID) []domain.ExtraID {
	seen := make(map[domain.ExtraID]bool, len(ids))
	out := make([]domain.ExtraID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (c *Controller) notify(level NoticeLevel, msg string) {
	c.notices = append(c.notices, Notice{Level: level, Message: msg, ExpiresAt: c.now().Add(c.noticeTTL)})
}

// snapshot copies the state and drops expired notices. Callers hold c.mu.
func (c *Controller) snapshot(fieldErrors map[string][]string) State {
	now := c.now()
	live := c.notices[:0]
	for _, n := range c.notices {
		if n.ExpiresAt.After(now) {
			live = append(live, n)
		}
	}
	c.notices = live

	form := c.form
	form.Passengers = append([]domain.Passenger(nil), c.form.Passengers...)
	form.Extras = append([]domain.ExtraID{}, c.form.Extras...)

	var saved *time.Time
	if c.draftSavedAt != nil {
		t := *c.draftSavedAt
		saved = &t
	}
	if len(fieldErrors) == 0 {
		fieldErrors = nil
	}
	return State{
		Form:               form,
		NumberOfPassengers: len(c.form.Passengers),
		Price:              c.price,
		FieldErrors:        fieldErrors,
		Notices:            append([]Notice{}, live...),
		DraftSavedAt:       saved,
	}
}

var _ WorkflowUseCase = (*Controller)(nil)
