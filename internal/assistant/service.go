package assistant

import "context"

// SpecialistRecord is a raw search result as returned by the booking service.
type SpecialistRecord struct {
	ID      string
	Name    string
	Details *string
}

// SlotRecord is a raw availability entry.
type SlotRecord struct {
	SlotID     string
	DateTime   string
	DoctorName string
	Location   *string
}

// BookingRecord is the raw booking response.
type BookingRecord struct {
	ID      string
	Details *string
	Message *string
}

// BookingService is the set of operations exposed by Snabb. The HTTP client
// in internal/snabb implements it; tests and demos use in-memory doubles.
type BookingService interface {
	// Login returns a session token, or "" when the credentials are rejected.
	Login(ctx context.Context, nationalID, password string) (string, error)

	FindSpecialists(ctx context.Context, token, query string) ([]SpecialistRecord, error)

	// GetAvailableSlots lists slots for a specialist. startDate and endDate are
	// forwarded untouched; their format belongs to Snabb.
	GetAvailableSlots(ctx context.Context, token, specialistID, startDate, endDate string) ([]SlotRecord, error)

	BookAppointment(ctx context.Context, token, slotID string, patient PatientData) (*BookingRecord, error)
}
