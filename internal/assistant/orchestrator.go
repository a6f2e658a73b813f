package assistant

import (
	"context"
	"errors"

	"github.com/wolfman30/snabb-assistant/internal/observability/metrics"
	"github.com/wolfman30/snabb-assistant/pkg/logging"
)

// DefaultSuggestionLimit is the number of slots offered when the caller has no preference.
const DefaultSuggestionLimit = 3

// Orchestrator sequences the booking flow for one patient. It holds the
// session token obtained by Authenticate and is not safe for concurrent use.
type Orchestrator struct {
	profile UserProfile
	service BookingService
	logger  *logging.Logger
	metrics *metrics.BookingMetrics
	token   string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used for flow events.
func WithLogger(logger *logging.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records step outcomes.
func WithMetrics(m *metrics.BookingMetrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// NewOrchestrator builds an unauthenticated Orchestrator for profile.
func NewOrchestrator(profile UserProfile, service BookingService, opts ...Option) (*Orchestrator, error) {
	if service == nil {
		return nil, ErrServiceRequired
	}
	o := &Orchestrator{
		profile: profile,
		service: service,
		logger:  logging.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.Component("assistant")
	return o, nil
}

// Authenticate logs in with the profile credentials and caches the token.
func (o *Orchestrator) Authenticate(ctx context.Context) (string, error) {
	token, err := o.service.Login(ctx, o.profile.NationalID, o.profile.ServicePassword)
	if err != nil {
		o.observe("authenticate", err)
		return "", err
	}
	if token == "" {
		err := &AuthenticationError{Reason: "Snabb did not return an authentication token"}
		o.observe("authenticate", err)
		o.logger.Warn("snabb login rejected", "rut", o.profile.NationalID)
		return "", err
	}

	o.token = token
	o.observe("authenticate", nil)
	o.logger.Info("authenticated with snabb", "rut", o.profile.NationalID)
	return token, nil
}

// Authenticated reports whether a session token is cached.
func (o *Orchestrator) Authenticated() bool {
	return o.token != ""
}

func (o *Orchestrator) requireToken(step string) (string, error) {
	if o.token == "" {
		err := &AuthenticationError{Reason: "must authenticate before " + step}
		o.observe(step, err)
		return "", err
	}
	return o.token, nil
}

// SearchSpecialists returns the specialists matching query, in the order Snabb returned them.
func (o *Orchestrator) SearchSpecialists(ctx context.Context, query string) ([]Specialist, error) {
	token, err := o.requireToken("search")
	if err != nil {
		return nil, err
	}
	records, err := o.service.FindSpecialists(ctx, token, query)
	if err != nil {
		o.observe("search", err)
		return nil, err
	}

	specialists := make([]Specialist, 0, len(records))
	for _, r := range records {
		specialists = append(specialists, Specialist{ID: r.ID, Name: r.Name, Details: r.Details})
	}
	o.observe("search", nil)
	o.logger.Debug("specialists found", "query", query, "count", len(specialists))
	return specialists, nil
}

// FetchAvailableSlots lists the slots of specialistID between startDate and
// endDate, earliest first.
func (o *Orchestrator) FetchAvailableSlots(ctx context.Context, specialistID, startDate, endDate string) ([]Slot, error) {
	token, err := o.requireToken("slots")
	if err != nil {
		return nil, err
	}
	records, err := o.service.GetAvailableSlots(ctx, token, specialistID, startDate, endDate)
	if err != nil {
		o.observe("slots", err)
		return nil, err
	}

	slots := make([]Slot, 0, len(records))
	for _, r := range records {
		slots = append(slots, Slot{
			ID:         r.SlotID,
			DateTime:   r.DateTime,
			DoctorName: r.DoctorName,
			Location:   r.Location,
		})
	}
	sorted, err := sortSlots(slots)
	if err != nil {
		o.observe("slots", err)
		return nil, err
	}
	o.observe("slots", nil)
	o.logger.Debug("slots fetched",
		"specialist_id", specialistID,
		"start_date", startDate,
		"end_date", endDate,
		"count", len(sorted),
	)
	return sorted, nil
}

// SuggestSlots returns up to limit slots ordered by datetime. It does not
// touch the network or modify slots.
func (o *Orchestrator) SuggestSlots(slots []Slot, limit int) ([]Slot, error) {
	return SuggestSlots(slots, limit)
}

// SuggestSlots is the slot-selection policy: sort by datetime, keep the first limit.
func SuggestSlots(slots []Slot, limit int) ([]Slot, error) {
	if limit <= 0 {
		return []Slot{}, nil
	}
	sorted, err := sortSlots(slots)
	if err != nil {
		return nil, err
	}
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted, nil
}

// BookSlot confirms the reservation for slotID on behalf of the profile.
func (o *Orchestrator) BookSlot(ctx context.Context, slotID string) (*BookingConfirmation, error) {
	token, err := o.requireToken("book")
	if err != nil {
		return nil, err
	}
	record, err := o.service.BookAppointment(ctx, token, slotID, o.profile.PatientPayload())
	if err != nil {
		o.observe("book", err)
		return nil, err
	}
	if record == nil {
		record = &BookingRecord{}
	}

	o.observe("book", nil)
	o.logger.Info("appointment booked", "slot_id", slotID, "booking_id", record.ID)
	return &BookingConfirmation{
		ID:      record.ID,
		Details: record.Details,
		Message: record.Message,
	}, nil
}

// Profile returns the profile the Orchestrator books for.
func (o *Orchestrator) Profile() UserProfile {
	return o.profile
}

// Snapshot exposes the profile and authentication state for diagnostics.
func (o *Orchestrator) Snapshot() Snapshot {
	return Snapshot{
		Profile:       o.profile,
		Authenticated: o.Authenticated(),
	}
}

func (o *Orchestrator) observe(step string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrAuthentication):
		outcome = "unauthenticated"
	default:
		outcome = "error"
	}
	o.metrics.ObserveStep(step, outcome)
}
