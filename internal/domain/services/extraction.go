// Package services contains domain business logic.
package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ersonp/sarcheck/internal/domain/entities"
)

// HighRiskThreshold is the minimum risk score that becomes a Why fact.
const HighRiskThreshold = 70

var amountPrinter = message.NewPrinter(language.English)

// Extract maps case records into the five fact categories.
// Order is preserved, duplicates within a category are dropped and
// categories without facts are omitted. Extract never fails.
func Extract(records []entities.FactRecord) entities.FiveWs {
	b := newFiveWsBuilder()
	for _, rec := range records {
		b.addRecord(rec)
	}
	return b.result()
}

// ExtractAny normalizes input with NormalizeRecords and extracts from it.
func ExtractAny(input any) (entities.FiveWs, error) {
	records, err := NormalizeRecords(input)
	if err != nil {
		return nil, err
	}
	return Extract(records), nil
}

// NormalizeRecords converts a mapping or a sequence of mappings into records.
// Any other shape fails with entities.ErrInvalidInput.
func NormalizeRecords(input any) ([]entities.FactRecord, error) {
	switch v := input.(type) {
	case entities.FactRecord:
		return []entities.FactRecord{v}, nil
	case map[string]any:
		return []entities.FactRecord{v}, nil
	case []entities.FactRecord:
		return v, nil
	case []map[string]any:
		records := make([]entities.FactRecord, 0, len(v))
		for _, m := range v {
			records = append(records, m)
		}
		return records, nil
	case []any:
		records := make([]entities.FactRecord, 0, len(v))
		for i, item := range v {
			switch m := item.(type) {
			case map[string]any:
				records = append(records, m)
			case entities.FactRecord:
				records = append(records, m)
			default:
				return nil, fmt.Errorf("%w: record %d is %T, expected a mapping", entities.ErrInvalidInput, i, item)
			}
		}
		return records, nil
	case nil:
		return nil, fmt.Errorf("%w: records are missing", entities.ErrInvalidInput)
	default:
		return nil, fmt.Errorf("%w: records must be a mapping or a sequence of mappings, got %T", entities.ErrInvalidInput, input)
	}
}

// fiveWsBuilder accumulates distinct facts per category in first-seen order.
type fiveWsBuilder struct {
	facts entities.FiveWs
	seen  map[entities.Category]map[string]struct{}
}

func newFiveWsBuilder() *fiveWsBuilder {
	return &fiveWsBuilder{
		facts: make(entities.FiveWs, len(entities.Categories)),
		seen:  make(map[entities.Category]map[string]struct{}, len(entities.Categories)),
	}
}

func (b *fiveWsBuilder) add(c entities.Category, fact string) {
	if fact == "" {
		return
	}
	seen, ok := b.seen[c]
	if !ok {
		seen = make(map[string]struct{})
		b.seen[c] = seen
	}
	if _, dup := seen[fact]; dup {
		return
	}
	seen[fact] = struct{}{}
	b.facts[c] = append(b.facts[c], fact)
}

func (b *fiveWsBuilder) addRecord(rec entities.FactRecord) {
	if name, ok := textField(rec, entities.FieldName); ok {
		b.add(entities.CategoryWho, name)
	}
	if id, ok := textField(rec, entities.FieldCustomerID); ok {
		b.add(entities.CategoryWho, "Customer ID "+id)
	}

	reason, hasReason := textField(rec, entities.FieldReason)
	if hasReason {
		b.add(entities.CategoryWhat, reason)
	}
	if amount, ok := numberField(rec, entities.FieldTransactionAmount); ok {
		b.add(entities.CategoryWhat, "Transaction amount of "+FormatAmount(amount))
	}

	if ts, ok := timestampField(rec, entities.FieldTimestamp); ok {
		b.add(entities.CategoryWhen, ts)
	}

	if country, ok := textField(rec, entities.FieldCountry); ok {
		b.add(entities.CategoryWhere, country)
	}
	lat, hasLat := numberField(rec, entities.FieldOriginLatitude)
	lon, hasLon := numberField(rec, entities.FieldOriginLongitude)
	if hasLat && hasLon {
		b.add(entities.CategoryWhere, fmt.Sprintf("Lat: %.2f, Lon: %.2f", lat, lon))
	}

	if score, ok := numberField(rec, entities.FieldRiskScore); ok && score >= HighRiskThreshold {
		b.add(entities.CategoryWhy, fmt.Sprintf("High risk score (%s)", valueToString(rec[entities.FieldRiskScore])))
	}
	// The reason is both the activity and its rationale.
	if hasReason {
		b.add(entities.CategoryWhy, reason)
	}
}

func (b *fiveWsBuilder) result() entities.FiveWs {
	return b.facts.Compact()
}

// FormatAmount renders an amount with thousands separators and two decimals.
func FormatAmount(amount float64) string {
	return amountPrinter.Sprintf("%.2f", amount)
}

// textField returns a non-empty string rendering of a field.
func textField(rec entities.FactRecord, key string) (string, bool) {
	v, ok := rec[key]
	if !ok || v == nil {
		return "", false
	}
	s := strings.TrimSpace(valueToString(v))
	return s, s != ""
}

// numberField reads a numeric field, accepting numbers and numeric strings.
func numberField(rec entities.FactRecord, key string) (float64, bool) {
	v, ok := rec[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", ""), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// timestampField renders a timestamp field canonically in UTC. Values that cannot be
// parsed are kept verbatim so the chronology check can report them.
func timestampField(rec entities.FactRecord, key string) (string, bool) {
	v, ok := rec[key]
	if !ok || v == nil {
		return "", false
	}
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(entities.TimestampLayout), true
	}
	raw, ok := textField(rec, key)
	if !ok {
		return "", false
	}
	t, err := ParseTimestamp(raw)
	if err != nil {
		return raw, true
	}
	return t.UTC().Format(entities.TimestampLayout), true
}

// valueToString converts a field value to string (JSON numbers arrive as float64).
func valueToString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return valueToString(float64(val))
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.UTC().Format(entities.TimestampLayout)
	default:
		return fmt.Sprintf("%v", val)
	}
}
