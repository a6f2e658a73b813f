package assistant

import (
	"errors"
	"sort"
	"strings"
	"time"
)

var errUnrecognizedDatetime = errors.New("unrecognized ISO-8601 datetime")

// Accepted ISO-8601 shapes, checked in order. Values without an offset are
// read as UTC.
var slotTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00:00",
	"2006-01-02T15:04-07:00",
	"2006-01-02T15:04-07:00:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02T15",
	"2006-01-02",
}

// ParseSlotTime parses a Snabb slot datetime. A trailing "Z" is rewritten to
// an explicit +00:00 offset before parsing. Surrounding whitespace is not
// tolerated.
func ParseSlotTime(value string) (time.Time, error) {
	v := value
	if strings.HasSuffix(v, "Z") {
		v = strings.TrimSuffix(v, "Z") + "+00:00"
	}
	if len(v) > 10 && v[10] == ' ' {
		v = v[:10] + "T" + v[11:]
	}
	for _, layout := range slotTimeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errUnrecognizedDatetime
}

// sortSlots returns a copy of slots ordered by parsed datetime, stable on
// ties. Every datetime is parsed up front so a malformed value fails the
// whole call.
func sortSlots(slots []Slot) ([]Slot, error) {
	type keyed struct {
		slot Slot
		at   time.Time
	}
	items := make([]keyed, len(slots))
	for i, slot := range slots {
		at, err := ParseSlotTime(slot.DateTime)
		if err != nil {
			return nil, &SlotTimeError{SlotID: slot.ID, Value: slot.DateTime, Err: err}
		}
		items[i] = keyed{slot: slot, at: at}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].at.Before(items[j].at)
	})

	sorted := make([]Slot, len(items))
	for i, item := range items {
		sorted[i] = item.slot
	}
	return sorted, nil
}
