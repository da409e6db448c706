package billview

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"billhub/internal/core"
)

func TestFromDocument(t *testing.T) {
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	b := FromDocument(Document{
		"billId":  "W-7",
		"amount":  "42.5",
		"status":  "paid",
		"dueDate": at,
		"month":   float64(3),
		"year":    int64(2024),
		"type":    "water",
	})
	assert.Equal(t, "W-7", b.ID)
	assert.Equal(t, 42.5, b.Amount)
	assert.True(t, b.Status.IsPaid())
	got, ok := b.DueDate.Time()
	assert.True(t, ok)
	assert.True(t, got.Equal(at))
	assert.Equal(t, "3", b.Month)
	assert.Equal(t, "2024", b.Year)
	assert.Equal(t, core.Water, b.Category)
}

func TestFromDocument_Malformed(t *testing.T) {
	b := FromDocument(Document{
		"amount":  "twelve",
		"status":  7,
		"dueDate": []int{1},
		"service": "gas",
	})
	assert.Equal(t, "", b.ID)
	assert.Equal(t, 0.0, b.Amount)
	assert.Equal(t, core.Status(""), b.Status)
	assert.False(t, b.Status.IsPaid())
	_, ok := b.DueDate.Time()
	assert.False(t, ok)
	assert.False(t, b.DueDate.IsUndated())
	assert.Equal(t, core.Gas, b.Category)

	empty := FromDocument(nil)
	assert.True(t, empty.DueDate.IsUndated())
	assert.Equal(t, 0.0, empty.Amount)
}

func TestAmount(t *testing.T) {
	cases := []struct {
		in   any
		want float64
	}{
		{nil, 0},
		{"", 0},
		{" 12 ", 12},
		{"1e2", 100},
		{"NaN", 0},
		{"abc", 0},
		{int64(5), 5},
		{json.Number("7.25"), 7.25},
		{true, 1},
		{false, 0},
		{map[string]any{}, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Amount(tc.in), "Amount(%#v)", tc.in)
	}
}

func TestFromDocuments(t *testing.T) {
	bills := FromDocuments([]Document{{"billId": "a"}, {"billId": "b"}})
	assert.Equal(t, []string{"a", "b"}, ids(bills))
	assert.Empty(t, FromDocuments(nil))
}

func TestSelectionQueryRoundTrip(t *testing.T) {
	sel := Selection{Month: "04", Year: "2024", Status: StatusPaid, SortBy: SortAmountHigh}
	assert.Equal(t, sel, SelectionFromQuery(sel.Query()))
	assert.Empty(t, DefaultSelection().Query())
	assert.Equal(t, DefaultSelection(), SelectionFromQuery(nil))
}
