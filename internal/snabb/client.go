package snabb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/snabb-assistant/internal/assistant"
	"github.com/wolfman30/snabb-assistant/internal/observability/metrics"
	"github.com/wolfman30/snabb-assistant/pkg/logging"
)

const (
	defaultBaseURL = "https://api.snabb.cl"
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 300
)

var clientTracer = otel.Tracer("snabb.internal.snabb.client")

// Client wraps the Snabb REST API and implements assistant.BookingService.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	baseURL    string
	logger     *logging.Logger
	metrics    *metrics.BookingMetrics
}

var _ assistant.BookingService = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. The caller keeps ownership
// of hc; a WithTimeout override is applied to a copy.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout overrides the per-request timeout. Non-positive values keep the
// default.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithMetrics records call counts and latency.
func WithMetrics(m *metrics.BookingMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient constructs a Snabb REST client.
func NewClient(baseURL string, logger *logging.Logger, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = logging.Default()
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.Component("snabb"),
	}
	for _, opt := range opts {
		opt(c)
	}
	switch {
	case c.httpClient == nil:
		timeout := defaultTimeout
		if c.timeout > 0 {
			timeout = c.timeout
		}
		c.httpClient = &http.Client{Timeout: timeout}
	case c.timeout > 0:
		clone := *c.httpClient
		clone.Timeout = c.timeout
		c.httpClient = &clone
	}
	return c
}

// Login exchanges a RUT and password for a session token. Rejected
// credentials (401/403) yield an empty token and no error.
func (c *Client) Login(ctx context.Context, nationalID, password string) (string, error) {
	var resp LoginResponse
	err := c.doJSON(ctx, "login", http.MethodPost, "/api/v1/auth/login", "", LoginRequest{RUT: nationalID, Password: password}, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden) {
			return "", nil
		}
		return "", fmt.Errorf("login: %w", err)
	}
	if resp.Token != "" {
		return resp.Token, nil
	}
	return resp.AccessToken, nil
}

// FindSpecialists searches doctors and specialities matching query.
func (c *Client) FindSpecialists(ctx context.Context, token, query string) ([]assistant.SpecialistRecord, error) {
	q := url.Values{}
	q.Set("query", query)
	path := "/api/v1/specialists?" + q.Encode()

	var wrapped struct {
		Specialists []Specialist `json:"specialists"`
		Data        []Specialist `json:"data"`
	}
	if err := c.doJSON(ctx, "find_specialists", http.MethodGet, path, token, nil, &wrapped); err != nil {
		return nil, fmt.Errorf("find specialists: %w", err)
	}
	raw := wrapped.Specialists
	if len(raw) == 0 {
		raw = wrapped.Data
	}

	out := make([]assistant.SpecialistRecord, 0, len(raw))
	for _, s := range raw {
		out = append(out, assistant.SpecialistRecord{ID: s.ID.String(), Name: s.Name.String(), Details: s.Details})
	}
	return out, nil
}

// GetAvailableSlots lists open slots for a specialist between two dates.
func (c *Client) GetAvailableSlots(ctx context.Context, token, specialistID, startDate, endDate string) ([]assistant.SlotRecord, error) {
	q := url.Values{}
	q.Set("startDate", startDate)
	q.Set("endDate", endDate)
	path := fmt.Sprintf("/api/v1/specialists/%s/slots?%s", url.PathEscape(specialistID), q.Encode())

	var wrapped struct {
		Slots []Slot `json:"slots"`
		Data  []Slot `json:"data"`
	}
	if err := c.doJSON(ctx, "get_available_slots", http.MethodGet, path, token, nil, &wrapped); err != nil {
		return nil, fmt.Errorf("get available slots: %w", err)
	}
	raw := wrapped.Slots
	if len(raw) == 0 {
		raw = wrapped.Data
	}

	out := make([]assistant.SlotRecord, 0, len(raw))
	for _, s := range raw {
		out = append(out, assistant.SlotRecord{
			SlotID:     s.SlotID.String(),
			DateTime:   s.DateTime.String(),
			DoctorName: s.DoctorName,
			Location:   s.Location,
		})
	}
	return out, nil
}

// BookAppointment confirms slotID for the given patient.
func (c *Client) BookAppointment(ctx context.Context, token, slotID string, patient assistant.PatientData) (*assistant.BookingRecord, error) {
	var resp AppointmentResponse
	req := AppointmentRequest{SlotID: slotID, PatientData: patient}
	if err := c.doJSON(ctx, "book_appointment", http.MethodPost, "/api/v1/appointments", token, req, &resp); err != nil {
		return nil, fmt.Errorf("book appointment: %w", err)
	}
	return &assistant.BookingRecord{
		ID:      resp.ID.String(),
		Details: resp.Details,
		Message: resp.Message,
	}, nil
}

func (c *Client) doJSON(ctx context.Context, operation, method, path, token string, body interface{}, out interface{}) (err error) {
	ctx, span := clientTracer.Start(ctx, "snabb."+operation, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("snabb.operation", operation),
	)

	start := time.Now()
	status := "error"
	defer func() {
		c.metrics.ObserveRequest(operation, status, time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()
	status = strconv.Itoa(resp.StatusCode)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(respBody)
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		c.logger.Warn("snabb API non-2xx response", "status", resp.StatusCode, "operation", operation, "body", msg)
		return &APIError{StatusCode: resp.StatusCode, Body: msg}
	}

	if len(respBody) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
