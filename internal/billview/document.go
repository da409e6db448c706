package billview

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"billhub/internal/core"
)

// Document is a raw bill record as returned by a document store query.
// Any field may be missing or hold an unexpected type.
type Document map[string]any

// FromDocument coerces a raw record into a Bill. It never fails: a missing
// or non-numeric amount becomes 0, a missing due date becomes undated, and
// the category is read from "type", "category" or "service" in that order.
func FromDocument(doc Document) core.Bill {
	return core.Bill{
		ID:       text(doc["billId"]),
		Amount:   Amount(doc["amount"]),
		Status:   core.Status(statusText(doc["status"])),
		DueDate:  dueDate(doc["dueDate"]),
		Month:    text(doc["month"]),
		Year:     text(doc["year"]),
		Category: core.Category(firstText(doc, "type", "category", "service")),
	}
}

// FromDocuments coerces every document in docs.
func FromDocuments(docs []Document) []core.Bill {
	out := make([]core.Bill, 0, len(docs))
	for _, d := range docs {
		out = append(out, FromDocument(d))
	}
	return out
}

// Amount coerces a raw amount to a number, treating anything that is not
// numeric as 0.
func Amount(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case int32:
		f = float64(x)
	case json.Number:
		f, _ = x.Float64()
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	case bool:
		if x {
			f = 1
		}
	default:
		return 0
	}
	if math.IsNaN(f) {
		return 0
	}
	return f
}

func dueDate(v any) core.DueDate {
	switch x := v.(type) {
	case nil:
		return core.Undated()
	case time.Time:
		return core.DueAt(x)
	case *time.Time:
		if x == nil {
			return core.Undated()
		}
		return core.DueAt(*x)
	case string:
		return core.DueString(x)
	case int64:
		return core.DueAt(time.UnixMilli(x).UTC())
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return core.DueString("")
		}
		return core.DueAt(time.UnixMilli(int64(x)).UTC())
	default:
		return core.DueString("")
	}
}

func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

func statusText(v any) string {
	s, _ := v.(string)
	return s
}

func firstText(doc Document, keys ...string) string {
	for _, k := range keys {
		if s := text(doc[k]); s != "" {
			return s
		}
	}
	return ""
}
