// Package entities contains core domain data structures.
package entities

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FactRecord is a single evidentiary item (customer profile, transaction or alert).
// Fields are optional; the extractor skips whatever a record does not carry.
type FactRecord map[string]any

// Well-known FactRecord fields.
const (
	FieldName              = "name"
	FieldCustomerID        = "customer_id"
	FieldReason            = "reason"
	FieldTransactionAmount = "transaction_amount"
	FieldTimestamp         = "timestamp"
	FieldCountry           = "country"
	FieldOriginLatitude    = "origin_latitude"
	FieldOriginLongitude   = "origin_longitude"
	FieldRiskScore         = "risk_score"
)

// TimestampLayout is the canonical rendering of When facts.
const TimestampLayout = "2006-01-02 15:04:05"

// Category is one of the five fact categories.
type Category string

const (
	CategoryWho   Category = "Who"
	CategoryWhat  Category = "What"
	CategoryWhen  Category = "When"
	CategoryWhere Category = "Where"
	CategoryWhy   Category = "Why"
)

// Categories lists the fact categories in canonical order.
var Categories = []Category{CategoryWho, CategoryWhat, CategoryWhen, CategoryWhere, CategoryWhy}

// IsValid reports whether c is one of the five categories.
func (c Category) IsValid() bool {
	switch c {
	case CategoryWho, CategoryWhat, CategoryWhen, CategoryWhere, CategoryWhy:
		return true
	default:
		return false
	}
}

// FiveWs maps a category to its ordered, distinct facts.
// A category with no facts is absent from the map; readers must treat
// a missing key and an empty list the same way.
type FiveWs map[Category][]string

// Count returns the number of facts recorded for c.
func (f FiveWs) Count(c Category) int {
	return len(f[c])
}

// Counts returns the fact count for every category, zeros included.
func (f FiveWs) Counts() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = f.Count(c)
	}
	return counts
}

// Missing returns the categories with zero facts, in canonical order.
func (f FiveWs) Missing() []Category {
	var missing []Category
	for _, c := range Categories {
		if f.Count(c) == 0 {
			missing = append(missing, c)
		}
	}
	return missing
}

// Compact returns a copy with empty categories dropped.
func (f FiveWs) Compact() FiveWs {
	out := make(FiveWs, len(f))
	for c, facts := range f {
		if len(facts) == 0 {
			continue
		}
		out[c] = append([]string(nil), facts...)
	}
	return out
}

// String renders the facts one category per line in canonical order.
func (f FiveWs) String() string {
	var b strings.Builder
	for _, c := range Categories {
		facts := f[c]
		if len(facts) == 0 {
			continue
		}
		data, _ := json.Marshal(facts)
		fmt.Fprintf(&b, "%s: %s\n", c, data)
	}
	return b.String()
}
