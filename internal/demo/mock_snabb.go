// Package demo serves an in-process imitation of the Snabb API so the
// assistant can be exercised end to end without real credentials.
package demo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	httpmiddleware "github.com/wolfman30/snabb-assistant/internal/http/middleware"
	"github.com/wolfman30/snabb-assistant/internal/snabb"
	"github.com/wolfman30/snabb-assistant/pkg/logging"
)

const (
	defaultSessionTTL  = time.Hour
	slotsPerSpecialist = 3
)

// Credentials accepted by the mock login endpoint.
type Credentials struct {
	RUT      string
	Password string
}

// MockSnabbHandler implements the Snabb REST endpoints with canned data.
// Login issues a signed session token that every other route verifies.
type MockSnabbHandler struct {
	credentials Credentials
	secret      string
	location    string
	specialists []mockSpecialist
	logger      *logging.Logger
	now         func() time.Time
}

type mockSpecialist struct {
	ID      string
	Name    string
	Details string
}

// MockOption configures a MockSnabbHandler.
type MockOption func(*MockSnabbHandler)

// WithClock overrides the time source used for slots and session tokens.
func WithClock(now func() time.Time) MockOption {
	return func(h *MockSnabbHandler) {
		if now != nil {
			h.now = now
		}
	}
}

// NewMockSnabbHandler builds the mock API. secret signs session tokens.
func NewMockSnabbHandler(creds Credentials, secret string, logger *logging.Logger, opts ...MockOption) *MockSnabbHandler {
	if logger == nil {
		logger = logging.Default()
	}
	h := &MockSnabbHandler{
		credentials: creds,
		secret:      secret,
		location:    "Clínica Central",
		specialists: []mockSpecialist{
			{ID: "1", Name: "Dra. Ana Cardióloga", Details: "Cardiología adultos"},
			{ID: "2", Name: "Dr. Luis Cardiólogo", Details: "Cardiología pediátrica"},
			{ID: "3", Name: "Dra. Carla Soto", Details: "Dermatología"},
		},
		logger: logger.Component("snabb-mock"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes mounts the mock API under /api/v1.
func (h *MockSnabbHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/api/v1/auth/login", h.HandleLogin)
	r.Group(func(protected chi.Router) {
		protected.Use(httpmiddleware.SessionJWT(h.secret, httpmiddleware.WithSessionClock(h.now)))
		protected.Get("/api/v1/specialists", h.HandleFindSpecialists)
		protected.Get("/api/v1/specialists/{specialistID}/slots", h.HandleAvailableSlots)
		protected.Post("/api/v1/appointments", h.HandleBookAppointment)
	})
	return r
}

func (h *MockSnabbHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req snabb.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.RUT == "" || req.Password == "" {
		http.Error(w, "rut and password are required", http.StatusBadRequest)
		return
	}
	if req.RUT != h.credentials.RUT || req.Password != h.credentials.Password {
		h.logger.Info("mock login rejected", "rut", req.RUT)
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := httpmiddleware.IssueSessionToken(h.secret, req.RUT, defaultSessionTTL, h.now())
	if err != nil {
		h.logger.Error("failed to sign session token", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *MockSnabbHandler) HandleFindSpecialists(w http.ResponseWriter, r *http.Request) {
	query := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("query")))
	matches := make([]map[string]string, 0, len(h.specialists))
	for _, s := range h.specialists {
		if query != "" &&
			!strings.Contains(strings.ToLower(s.Name), query) &&
			!strings.Contains(strings.ToLower(s.Details), query) {
			continue
		}
		matches = append(matches, map[string]string{"id": s.ID, "name": s.Name, "details": s.Details})
	}
	writeJSON(w, http.StatusOK, map[string]any{"specialists": matches})
}

// HandleAvailableSlots returns one 09:00 UTC slot per day starting tomorrow,
// listed latest first.
func (h *MockSnabbHandler) HandleAvailableSlots(w http.ResponseWriter, r *http.Request) {
	specialistID := chi.URLParam(r, "specialistID")
	if !h.hasSpecialist(specialistID) {
		http.Error(w, "specialist not found", http.StatusNotFound)
		return
	}

	now := h.now().UTC()
	base := time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	slots := make([]map[string]string, 0, slotsPerSpecialist)
	for idx := slotsPerSpecialist - 1; idx >= 0; idx-- {
		at := base.AddDate(0, 0, idx)
		slots = append(slots, map[string]string{
			"slotId":     fmt.Sprintf("%s-slot-%d", specialistID, idx),
			"datetime":   at.Format("2006-01-02T15:04:05") + "Z",
			"doctorName": fmt.Sprintf("Doctor #%s", specialistID),
			"location":   h.location,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"slots": slots})
}

// HandleBookAppointment books for the logged-in patient only: patientData.rut
// must equal the session subject.
func (h *MockSnabbHandler) HandleBookAppointment(w http.ResponseWriter, r *http.Request) {
	claims, ok := httpmiddleware.SessionClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}
	var req snabb.AppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.SlotID) == "" {
		http.Error(w, "slotId is required", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.PatientData.FirstName) == "" {
		http.Error(w, "patientData.firstName is required", http.StatusBadRequest)
		return
	}
	if req.PatientData.NationalID != claims.Subject {
		h.logger.Warn("mock booking for another patient rejected", "slot_id", req.SlotID, "session_rut", claims.Subject)
		http.Error(w, "patientData.rut does not match the session", http.StatusForbidden)
		return
	}

	patient := strings.TrimSpace(req.PatientData.FirstName + " " + req.PatientData.LastName)
	h.logger.Info("mock appointment booked", "slot_id", req.SlotID)
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":      "booking-" + req.SlotID,
		"details": "Reserva confirmada para " + patient,
		"message": "Recibirás un correo con los detalles de la cita.",
	})
}

func (h *MockSnabbHandler) hasSpecialist(id string) bool {
	for _, s := range h.specialists {
		if s.ID == id {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
