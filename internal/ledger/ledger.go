// Package ledger holds the per-goal effort history: one entry per calendar
// date, kept in ascending date order, plus the totals derived from it.
//
// Everything here is pure. Persistence lives behind domain.GoalBackend.
package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// DateLayout is the calendar-date format used as ledger key.
const DateLayout = "2006-01-02"

// Entry is the effort logged for a single date.
type Entry struct {
	Date   string  `json:"date"`
	Effort float64 `json:"effort"`
}

// Ledger is the canonical, date-ascending effort history of one goal.
type Ledger []Entry

// Totals are derived from a ledger and never stored on their own.
type Totals struct {
	Invested  float64 `json:"investedEffort"`
	Remaining float64 `json:"remainingEffort"`
	Total     float64 `json:"estimatedEffort"`
}

// ValidationError reports a malformed value supplied by the caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Normalize accepts either wire shape of a progress calendar (an array of
// {date, effort} objects or a {date: effort} object) and returns the
// canonical ledger. Absent, null or unreadable input yields an empty ledger.
//
// Entries without a date or without a numeric effort are skipped. When an
// array repeats a date the last occurrence wins.
func Normalize(raw json.RawMessage) Ledger {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Ledger{}
	}

	byDate := make(map[string]float64)

	switch raw[0] {
	case '[':
		var items []struct {
			Date   string          `json:"date"`
			Effort json.RawMessage `json:"effort"`
		}
		if err := json.Unmarshal(raw, &items); err != nil {
			return Ledger{}
		}
		for _, it := range items {
			v, ok := parseEffort(it.Effort)
			if it.Date == "" || !ok {
				continue
			}
			byDate[it.Date] = v
		}
	case '{':
		var m map[string]json.RawMessage
		if err := json.Unmarshal(raw, &m); err != nil {
			return Ledger{}
		}
		for date, effort := range m {
			v, ok := parseEffort(effort)
			if date == "" || !ok {
				continue
			}
			byDate[date] = v
		}
	default:
		return Ledger{}
	}

	return FromMap(byDate)
}

// parseEffort reads a JSON number, or a string holding one. Older device
// records stored form input verbatim, so both appear in the wild.
func parseEffort(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(s)
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FromMap builds a ledger from the {date: effort} form.
func FromMap(m map[string]float64) Ledger {
	out := make(Ledger, 0, len(m))
	for date, effort := range m {
		out = append(out, Entry{Date: date, Effort: effort})
	}
	out.sort()
	return out
}

// ToMap returns the {date: effort} form. Only ordering is lost.
func (l Ledger) ToMap() map[string]float64 {
	m := make(map[string]float64, len(l))
	for _, e := range l {
		m[e.Date] = e.Effort
	}
	return m
}

// UnmarshalJSON normalizes whichever shape arrives on the wire.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	*l = Normalize(data)
	return nil
}

// MarshalJSON always writes the array form; a nil ledger becomes [].
func (l Ledger) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Entry(l))
}

// Lookup returns the effort logged for date, if any.
func (l Ledger) Lookup(date string) (float64, bool) {
	for _, e := range l {
		if e.Date == date {
			return e.Effort, true
		}
	}
	return 0, false
}

// Invested is the sum of every entry.
func (l Ledger) Invested() float64 {
	var sum float64
	for _, e := range l {
		sum += e.Effort
	}
	return sum
}

func (l Ledger) sort() {
	sort.SliceStable(l, func(i, j int) bool { return l[i].Date < l[j].Date })
}

// Upsert returns a copy of l where date maps to effort. Any previous entry
// for date is replaced, so repeated submissions are last-write-wins.
// l itself is not modified.
func Upsert(l Ledger, date string, effort float64) (Ledger, error) {
	if math.IsNaN(effort) || math.IsInf(effort, 0) {
		return nil, &ValidationError{Field: "effort", Message: "effort must be a finite number"}
	}
	if effort < 0 {
		return nil, &ValidationError{Field: "effort", Message: "effort must not be negative"}
	}

	out := make(Ledger, 0, len(l)+1)
	for _, e := range l {
		if e.Date != date {
			out = append(out, e)
		}
	}
	out = append(out, Entry{Date: date, Effort: effort})
	out.sort()
	return out, nil
}

// Aggregate derives invested and remaining effort against an estimate.
// Remaining never drops below zero.
func Aggregate(l Ledger, estimated float64) Totals {
	invested := l.Invested()
	return Totals{
		Invested:  invested,
		Remaining: math.Max(estimated-invested, 0),
		Total:     estimated,
	}
}
