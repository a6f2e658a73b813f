package demo

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/snabb-assistant/internal/assistant"
	"github.com/wolfman30/snabb-assistant/internal/snabb"
	"github.com/wolfman30/snabb-assistant/pkg/logging"
)

var fixedNow = time.Date(2024, 7, 1, 15, 30, 0, 0, time.UTC)

func demoProfile() assistant.UserProfile {
	return assistant.UserProfile{
		FullName:        "Maria Jose Lopez",
		NationalID:      "12.345.678-9",
		Email:           "maria@example.com",
		Phone:           "123456789",
		DateOfBirth:     "1990-05-01",
		ServicePassword: "secret",
	}
}

func newMockServer(t *testing.T, opts ...MockOption) *httptest.Server {
	t.Helper()
	logger := logging.NewWithWriter(&bytes.Buffer{}, "debug")
	opts = append([]MockOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	h := NewMockSnabbHandler(Credentials{RUT: "12.345.678-9", Password: "secret"}, "test-secret", logger, opts...)
	ts := httptest.NewServer(h.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func newOrchestrator(t *testing.T, baseURL string, profile assistant.UserProfile) *assistant.Orchestrator {
	t.Helper()
	logger := logging.NewWithWriter(&bytes.Buffer{}, "debug")
	o, err := assistant.NewOrchestrator(profile, snabb.NewClient(baseURL, logger), assistant.WithLogger(logger))
	require.NoError(t, err)
	return o
}

func TestMockSnabb_EndToEnd(t *testing.T) {
	ctx := context.Background()
	ts := newMockServer(t)
	o := newOrchestrator(t, ts.URL, demoProfile())

	token, err := o.Authenticate(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	specialists, err := o.SearchSpecialists(ctx, "cardio")
	require.NoError(t, err)
	require.Len(t, specialists, 2)
	assert.Equal(t, "Dra. Ana Cardióloga", specialists[0].Name)

	slots, err := o.FetchAvailableSlots(ctx, specialists[0].ID, "2024-07-01", "2024-07-31")
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, []string{"1-slot-0", "1-slot-1", "1-slot-2"}, []string{slots[0].ID, slots[1].ID, slots[2].ID})
	assert.Equal(t, "2024-07-02T09:00:00Z", slots[0].DateTime)
	require.NotNil(t, slots[0].Location)
	assert.Equal(t, "Clínica Central", *slots[0].Location)

	suggestions, err := o.SuggestSlots(slots, 1)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	confirmation, err := o.BookSlot(ctx, suggestions[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "booking-1-slot-0", confirmation.ID)
	require.NotNil(t, confirmation.Details)
	assert.Equal(t, "Reserva confirmada para Maria Jose Lopez", *confirmation.Details)
}

func TestMockSnabb_WrongPassword(t *testing.T) {
	ts := newMockServer(t)
	profile := demoProfile()
	profile.ServicePassword = "wrong"
	o := newOrchestrator(t, ts.URL, profile)

	_, err := o.Authenticate(context.Background())
	assert.ErrorIs(t, err, assistant.ErrAuthentication)
	assert.False(t, o.Snapshot().Authenticated)
}

func TestMockSnabb_ProtectedRoutesRequireToken(t *testing.T) {
	ts := newMockServer(t)
	client := snabb.NewClient(ts.URL, logging.NewWithWriter(&bytes.Buffer{}, "info"))

	_, err := client.FindSpecialists(context.Background(), "forged", "cardio")
	var apiErr *snabb.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestMockSnabb_UnknownSpecialist(t *testing.T) {
	ctx := context.Background()
	ts := newMockServer(t)
	o := newOrchestrator(t, ts.URL, demoProfile())
	_, err := o.Authenticate(ctx)
	require.NoError(t, err)

	_, err = o.FetchAvailableSlots(ctx, "99", "2024-07-01", "2024-07-31")
	var apiErr *snabb.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestMockSnabb_BookingRequiresPatientName(t *testing.T) {
	ctx := context.Background()
	ts := newMockServer(t)
	profile := demoProfile()
	profile.FullName = "   "
	o := newOrchestrator(t, ts.URL, profile)
	_, err := o.Authenticate(ctx)
	require.NoError(t, err)

	_, err = o.BookSlot(ctx, "1-slot-0")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "firstName"))
}

func TestMockSnabb_EmptyQueryListsEverySpecialist(t *testing.T) {
	ctx := context.Background()
	ts := newMockServer(t)
	o := newOrchestrator(t, ts.URL, demoProfile())
	_, err := o.Authenticate(ctx)
	require.NoError(t, err)

	specialists, err := o.SearchSpecialists(ctx, "")
	require.NoError(t, err)
	assert.Len(t, specialists, 3)
}

func TestMockSnabb_BookingForAnotherPatientForbidden(t *testing.T) {
	ctx := context.Background()
	ts := newMockServer(t)
	client := snabb.NewClient(ts.URL, logging.NewWithWriter(&bytes.Buffer{}, "info"))
	token, err := client.Login(ctx, "12.345.678-9", "secret")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	_, err = client.BookAppointment(ctx, token, "1-slot-0", assistant.PatientData{FirstName: "Eva", NationalID: "11.111.111-1"})
	var apiErr *snabb.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)

	rec, err := client.BookAppointment(ctx, token, "1-slot-0", assistant.PatientData{FirstName: "Maria", NationalID: "12.345.678-9"})
	require.NoError(t, err)
	assert.Equal(t, "booking-1-slot-0", rec.ID)
}

func TestMockSnabb_SessionTokensFollowClock(t *testing.T) {
	ctx := context.Background()
	ts := newMockServer(t)
	client := snabb.NewClient(ts.URL, logging.NewWithWriter(&bytes.Buffer{}, "info"))
	token, err := client.Login(ctx, "12.345.678-9", "secret")
	require.NoError(t, err)

	var claims jwt.RegisteredClaims
	_, _, err = jwt.NewParser().ParseUnverified(token, &claims)
	require.NoError(t, err)
	require.NotNil(t, claims.IssuedAt)
	assert.True(t, claims.IssuedAt.Time.Equal(fixedNow), "iat = %s", claims.IssuedAt.Time)
	assert.Equal(t, "12.345.678-9", claims.Subject)

	// same secret, wall clock: a token minted in July 2024 has long expired
	live := newMockServer(t, WithClock(time.Now))
	_, err = snabb.NewClient(live.URL, logging.NewWithWriter(&bytes.Buffer{}, "info")).FindSpecialists(ctx, token, "cardio")
	var apiErr *snabb.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}
