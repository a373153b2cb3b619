package ledger_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/goal-forge/internal/ledger"
)

func TestNormalizeArrayForm(t *testing.T) {
	raw := json.RawMessage(`[
		{"date":"2024-03-02","effort":20},
		{"date":"2024-03-01","effort":10},
		{"date":"2024-03-02","effort":25}
	]`)

	got := ledger.Normalize(raw)
	want := ledger.Ledger{
		{Date: "2024-03-01", Effort: 10},
		{Date: "2024-03-02", Effort: 25},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Normalize mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeMapForm(t *testing.T) {
	raw := json.RawMessage(`{"2024-01-03":5,"2024-01-01":1,"2024-01-02":"3"}`)

	got := ledger.Normalize(raw)
	want := ledger.Ledger{
		{Date: "2024-01-01", Effort: 1},
		{Date: "2024-01-02", Effort: 3},
		{Date: "2024-01-03", Effort: 5},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Normalize mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeEmptyAndMalformed(t *testing.T) {
	cases := map[string]string{
		"absent":    ``,
		"null":      `null`,
		"number":    `42`,
		"broken":    `[{"date":`,
		"emptyList": `[]`,
		"emptyMap":  `{}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			got := ledger.Normalize(json.RawMessage(raw))
			require.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestNormalizeSkipsIncompleteEntries(t *testing.T) {
	raw := json.RawMessage(`[{"date":"","effort":3},{"date":"2024-01-01"},{"date":"2024-01-02","effort":null},{"date":"2024-01-03","effort":4}]`)

	got := ledger.Normalize(raw)
	assert.Equal(t, ledger.Ledger{{Date: "2024-01-03", Effort: 4}}, got)
}

func TestLedgerJSONRoundTrip(t *testing.T) {
	var goal struct {
		Calendar ledger.Ledger `json:"progressCalendar"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"progressCalendar":{"2024-05-02":2,"2024-05-01":1}}`), &goal))

	out, err := json.Marshal(goal)
	require.NoError(t, err)
	assert.JSONEq(t, `{"progressCalendar":[{"date":"2024-05-01","effort":1},{"date":"2024-05-02","effort":2}]}`, string(out))

	var nilGoal struct {
		Calendar ledger.Ledger `json:"progressCalendar"`
	}
	out, err = json.Marshal(nilGoal)
	require.NoError(t, err)
	assert.JSONEq(t, `{"progressCalendar":[]}`, string(out))
}

func TestUpsertIntoEmpty(t *testing.T) {
	got, err := ledger.Upsert(ledger.Ledger{}, "2024-02-10", 45)
	require.NoError(t, err)
	assert.Equal(t, ledger.Ledger{{Date: "2024-02-10", Effort: 45}}, got)
}

func TestUpsertReplacesSameDate(t *testing.T) {
	base := ledger.Ledger{
		{Date: "2024-01-01", Effort: 10},
		{Date: "2024-01-05", Effort: 50},
	}

	first, err := ledger.Upsert(base, "2024-01-03", 30)
	require.NoError(t, err)
	second, err := ledger.Upsert(first, "2024-01-03", 35)
	require.NoError(t, err)

	want := ledger.Ledger{
		{Date: "2024-01-01", Effort: 10},
		{Date: "2024-01-03", Effort: 35},
		{Date: "2024-01-05", Effort: 50},
	}
	assert.Equal(t, want, second)

	// input slices are untouched
	assert.Len(t, base, 2)
	v, _ := first.Lookup("2024-01-03")
	assert.Equal(t, 30.0, v)
}

func TestUpsertRejectsInvalidEffort(t *testing.T) {
	for _, effort := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := ledger.Upsert(nil, "2024-01-01", effort)
		var verr *ledger.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "effort", verr.Field)
	}
}

func TestAggregate(t *testing.T) {
	l := ledger.Ledger{{Date: "2024-01-01", Effort: 30}}
	assert.Equal(t, ledger.Totals{Invested: 30, Remaining: 60, Total: 90}, ledger.Aggregate(l, 90))

	over := ledger.Ledger{{Date: "2024-01-01", Effort: 80}, {Date: "2024-01-02", Effort: 40}}
	assert.Equal(t, ledger.Totals{Invested: 120, Remaining: 0, Total: 100}, ledger.Aggregate(over, 100))

	assert.Equal(t, ledger.Totals{Total: 10, Remaining: 10}, ledger.Aggregate(nil, 10))
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{90, "1h30m"},
		{60, "1h"},
		{45, "45m"},
		{30, "30m"},
		{125.7, "2h5m"},
		{0.4, "0"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ledger.FormatDuration(c.in), "FormatDuration(%v)", c.in)
	}
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "12", ledger.FormatCount(12))
	assert.Equal(t, "2.5", ledger.FormatCount(2.5))
}
