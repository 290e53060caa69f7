package rowstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record is one row keyed by header column name
type Record map[string]any

// String returns the value as a string. Numeric cells keep their stored text,
// so "1.50" or a long digit run reads back unchanged.
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

// Int returns the value as an int, zero when absent or malformed
func (r Record) Int(key string) int {
	switch v := r[key].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return int(f)
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return int(n)
	default:
		return 0
	}
}

// Float returns the value as a float64, zero when absent or malformed
func (r Record) Float(key string) float64 {
	switch v := r[key].(type) {
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Bool returns the value as a bool; spreadsheet style TRUE/FALSE strings are accepted
func (r Record) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	case json.Number:
		f, err := v.Float64()
		return err == nil && f != 0
	case float64:
		return v != 0
	default:
		return false
	}
}

// Strings returns the value as a string slice
func (r Record) Strings(key string) []string {
	switch v := r[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
				continue
			}
			out = append(out, Record{"v": item}.String("v"))
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	default:
		return nil
	}
}

// Time parses an RFC 3339 timestamp, zero time when absent or malformed
func (r Record) Time(key string) time.Time {
	s := r.String(key)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// TimePtr is Time returning nil for the zero value
func (r Record) TimePtr(key string) *time.Time {
	t := r.Time(key)
	if t.IsZero() {
		return nil
	}
	return &t
}

// Decode re-marshals the value into out, used for nested JSON cells
func (r Record) Decode(key string, out any) error {
	v, ok := r[key]
	if !ok || v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// EncodeCell renders a value as a cell. Strings are stored raw, everything else as JSON.
func EncodeCell(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case time.Time:
		if val.IsZero() {
			return "", nil
		}
		return val.UTC().Format(time.RFC3339Nano), nil
	case *time.Time:
		if val == nil || val.IsZero() {
			return "", nil
		}
		return val.UTC().Format(time.RFC3339Nano), nil
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return "", fmt.Errorf("failed to encode cell: %w", err)
		}
		if string(data) == "null" {
			return "", nil
		}
		return string(data), nil
	}
}

// DecodeCell parses a cell as JSON when possible and keeps the raw string otherwise.
// Numbers decode as json.Number so their text survives a read.
func DecodeCell(cell string) any {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return cell
	}
	return v
}

// toRow lays a record out in header order
func toRow(header []string, rec Record) ([]string, error) {
	row := make([]string, len(header))
	for i, col := range header {
		cell, err := EncodeCell(rec[col])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		row[i] = cell
	}
	return row, nil
}

// fromRow maps a row onto the header; short rows leave trailing columns absent
func fromRow(header []string, row []string) Record {
	rec := make(Record, len(header))
	for i, col := range header {
		if i >= len(row) {
			break
		}
		if v := DecodeCell(row[i]); v != nil {
			rec[col] = v
		}
	}
	return rec
}
