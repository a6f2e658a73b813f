// Package assistant drives the Snabb booking flow: authenticate, search
// specialists, list and rank slots, and confirm a booking.
package assistant

import (
	"log/slog"
	"strings"
)

// UserProfile stores the personal data required to complete a booking.
type UserProfile struct {
	FullName        string `json:"full_name"`
	NationalID      string `json:"rut"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	DateOfBirth     string `json:"date_of_birth"`
	ServicePassword string `json:"snabb_password"`
}

// PatientData is the patient block expected by the booking call.
type PatientData struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	NationalID  string `json:"rut"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"dateOfBirth"`
}

// PatientPayload splits FullName on whitespace: the first word becomes the
// first name and every remaining word is folded into the last name.
func (p UserProfile) PatientPayload() PatientData {
	names := strings.Fields(p.FullName)
	var first, last string
	if len(names) > 0 {
		first = names[0]
	}
	if len(names) > 1 {
		last = strings.Join(names[1:], " ")
	}
	return PatientData{
		FirstName:   first,
		LastName:    last,
		NationalID:  p.NationalID,
		Email:       p.Email,
		Phone:       p.Phone,
		DateOfBirth: p.DateOfBirth,
	}
}

// LogValue keeps the service password out of structured logs.
func (p UserProfile) LogValue() slog.Value {
	password := ""
	if p.ServicePassword != "" {
		password = "[REDACTED]"
	}
	return slog.GroupValue(
		slog.String("full_name", p.FullName),
		slog.String("rut", p.NationalID),
		slog.String("email", p.Email),
		slog.String("phone", p.Phone),
		slog.String("date_of_birth", p.DateOfBirth),
		slog.String("snabb_password", password),
	)
}

// Specialist is a doctor or speciality returned by a search.
type Specialist struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Details *string `json:"details,omitempty"`
}

// Slot is an available appointment slot. DateTime is kept exactly as Snabb
// sent it; ordering always comes from ParseSlotTime.
type Slot struct {
	ID         string  `json:"slotId"`
	DateTime   string  `json:"datetime"`
	DoctorName string  `json:"doctorName"`
	Location   *string `json:"location,omitempty"`
}

// BookingConfirmation is the outcome of a successful booking.
type BookingConfirmation struct {
	ID      string  `json:"id"`
	Details *string `json:"details,omitempty"`
	Message *string `json:"message,omitempty"`
}

// Snapshot is a diagnostics view of an Orchestrator.
type Snapshot struct {
	Profile       UserProfile `json:"user_profile"`
	Authenticated bool        `json:"is_authenticated"`
}
