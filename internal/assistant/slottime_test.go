package assistant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotIDs(slots []Slot) []string {
	ids := make([]string, 0, len(slots))
	for _, s := range slots {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestParseSlotTime_ZuluEqualsExplicitOffset(t *testing.T) {
	zulu, err := ParseSlotTime("2024-07-01T09:00:00Z")
	require.NoError(t, err)
	offset, err := ParseSlotTime("2024-07-01T09:00:00+00:00")
	require.NoError(t, err)
	assert.True(t, zulu.Equal(offset))
}

func TestParseSlotTime_Shapes(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-07-15T09:00:00", time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC)},
		{"2024-07-15 09:00:00", time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC)},
		{"2024-07-15T09:00", time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC)},
		{"2024-07-15", time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-07-15T09:00:00.250Z", time.Date(2024, 7, 15, 9, 0, 0, 250_000_000, time.UTC)},
		{"2024-07-15T09:00:00-04:00", time.Date(2024, 7, 15, 13, 0, 0, 0, time.UTC)},
		{"2024-07-15T09:00+01:00", time.Date(2024, 7, 15, 8, 0, 0, 0, time.UTC)},
		{"2024-07-15T09", time.Date(2024, 7, 15, 9, 0, 0, 0, time.UTC)},
		{"2024-07-15T09:00:00+05:30:00", time.Date(2024, 7, 15, 3, 30, 0, 0, time.UTC)},
		{"2024-07-15T09:00-05:30:00", time.Date(2024, 7, 15, 14, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSlotTime(tt.in)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestParseSlotTime_Malformed(t *testing.T) {
	for _, in := range []string{
		"",
		"soon",
		"15/07/2024 09:00",
		"2024-13-01T09:00:00",
		"2024-07-15T09:00:00+0000",
		" 2024-07-15T09:00:00 ",
		"2024-07-15T09:00:00Z\n",
	} {
		_, err := ParseSlotTime(in)
		assert.Error(t, err, in)
	}
}

func TestSuggestSlots(t *testing.T) {
	slots := []Slot{
		{ID: "late", DateTime: "2024-07-16T10:00:00Z"},
		{ID: "early", DateTime: "2024-07-14T10:00:00Z"},
		{ID: "mid", DateTime: "2024-07-15T10:00:00"},
		{ID: "mid-tie", DateTime: "2024-07-15T10:00:00+00:00"},
	}
	original := append([]Slot(nil), slots...)

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"default limit", DefaultSuggestionLimit, []string{"early", "mid", "mid-tie"}},
		{"limit one", 1, []string{"early"}},
		{"limit exceeds length", 10, []string{"early", "mid", "mid-tie", "late"}},
		{"zero", 0, []string{}},
		{"negative", -2, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SuggestSlots(slots, tt.limit)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, slotIDs(got))
			assert.Equal(t, original, slots, "input must not be mutated")
		})
	}
}

func TestSuggestSlots_EmptyInput(t *testing.T) {
	got, err := SuggestSlots(nil, 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSuggestSlots_MalformedDatetime(t *testing.T) {
	_, err := SuggestSlots([]Slot{{ID: "x", DateTime: "not-a-date"}}, 2)
	var timeErr *SlotTimeError
	require.ErrorAs(t, err, &timeErr)
	assert.Equal(t, "x", timeErr.SlotID)
}

func TestSuggestSlots_NonPositiveLimitSkipsParsing(t *testing.T) {
	got, err := SuggestSlots([]Slot{{ID: "x", DateTime: "not-a-date"}}, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
