// Package snabb contains the Snabb REST client used by the booking assistant.
package snabb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wolfman30/snabb-assistant/internal/assistant"
)

// FlexString decodes a JSON string, number or boolean into text. Snabb sends
// identifiers both as numbers and as strings depending on the endpoint.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	if data[0] == '{' || data[0] == '[' {
		return fmt.Errorf("snabb: cannot decode %s into text", data)
	}
	*f = FlexString(data)
	return nil
}

func (f FlexString) String() string { return string(f) }

// LoginRequest is the body of POST /api/v1/auth/login.
type LoginRequest struct {
	RUT      string `json:"rut"`
	Password string `json:"password"`
}

// LoginResponse carries the session token.
type LoginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"accessToken,omitempty"`
}

// Specialist is a search result as sent by Snabb.
type Specialist struct {
	ID      FlexString `json:"id"`
	Name    FlexString `json:"name"`
	Details *string    `json:"details,omitempty"`
}

// Slot is an availability entry as sent by Snabb.
type Slot struct {
	SlotID     FlexString `json:"slotId"`
	DateTime   FlexString `json:"datetime"`
	DoctorName string     `json:"doctorName"`
	Location   *string    `json:"location,omitempty"`
}

// AppointmentRequest is the body of POST /api/v1/appointments.
type AppointmentRequest struct {
	SlotID      string                `json:"slotId"`
	PatientData assistant.PatientData `json:"patientData"`
}

// AppointmentResponse is Snabb's booking confirmation.
type AppointmentResponse struct {
	ID      FlexString `json:"id"`
	Details *string    `json:"details,omitempty"`
	Message *string    `json:"message,omitempty"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("snabb API returned %d", e.StatusCode)
	}
	return fmt.Sprintf("snabb API returned %d: %s", e.StatusCode, body)
}
