package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Payload holds the fields of a dataset the store does not interpret
// (parsed rows, file metadata, ...). Values are persisted as JSON and come back
// as JSON values: integers as int64, other numbers as float64, then string,
// bool, []any and map[string]any. Keys named like a known field are dropped.
type Payload map[string]any

// Dataset is the central entity of the domain.
// It describes one uploaded tabular file and is identified by ID.
type Dataset struct {
	ID          string
	Title       string
	Description string
	Category    string
	Year        int
	UploadDate  time.Time
	Payload     Payload
}

// Field names of the persisted record.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldCategory    = "category"
	FieldYear        = "year"
	FieldUploadDate  = "upload_date"
)

var knownFields = map[string]bool{
	FieldID:          true,
	FieldTitle:       true,
	FieldDescription: true,
	FieldCategory:    true,
	FieldYear:        true,
	FieldUploadDate:  true,
}

// NewDataset builds a dataset with a freshly generated ID and UploadDate set to now.
func NewDataset(title, description, category string, year int, payload Payload) Dataset {
	return Dataset{
		ID:          NewID(DefaultIDPrefix),
		Title:       title,
		Description: description,
		Category:    category,
		Year:        year,
		UploadDate:  time.Now().UTC(),
		Payload:     payload,
	}
}

// MarshalJSON writes a flat object: payload keys sit next to the known fields.
// Payload keys that collide with a known field are never written.
func (d Dataset) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Payload)+len(knownFields))
	for k, v := range d.Payload {
		if knownFields[k] {
			continue
		}
		out[k] = v
	}
	out[FieldID] = d.ID
	out[FieldTitle] = d.Title
	out[FieldDescription] = d.Description
	out[FieldCategory] = d.Category
	out[FieldYear] = d.Year
	if !d.UploadDate.IsZero() {
		out[FieldUploadDate] = d.UploadDate.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the flat form produced by MarshalJSON.
// Year accepts any JSON number or a numeric string; upload_date accepts
// RFC 3339 strings or epoch milliseconds.
func (d *Dataset) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	var out Dataset
	var err error
	if out.ID, err = stringField(raw, FieldID); err != nil {
		return err
	}
	if out.Title, err = stringField(raw, FieldTitle); err != nil {
		return err
	}
	if out.Description, err = stringField(raw, FieldDescription); err != nil {
		return err
	}
	if out.Category, err = stringField(raw, FieldCategory); err != nil {
		return err
	}
	if v, ok := raw[FieldYear]; ok && v != nil {
		if out.Year, err = ParseYear(v); err != nil {
			return err
		}
	}
	if v, ok := raw[FieldUploadDate]; ok && v != nil {
		if out.UploadDate, err = parseTimestamp(v); err != nil {
			return err
		}
	}

	for k, v := range raw {
		if knownFields[k] {
			continue
		}
		if out.Payload == nil {
			out.Payload = make(Payload)
		}
		out.Payload[k] = normalizeNumbers(v)
	}

	*d = out
	return nil
}

// ParseYear converts a year held in any numeric representation to an int.
// Fractional values are rejected.
func ParseYear(v any) (int, error) {
	switch y := v.(type) {
	case int:
		return y, nil
	case int32:
		return int(y), nil
	case int64:
		return int(y), nil
	case float32:
		return floatYear(float64(y))
	case float64:
		return floatYear(y)
	case json.Number:
		if i, err := y.Int64(); err == nil {
			return int(i), nil
		}
		f, err := y.Float64()
		if err != nil {
			return 0, fmt.Errorf("invalid year %q: %w", y.String(), err)
		}
		return floatYear(f)
	case string:
		s := strings.TrimSpace(y)
		if i, err := strconv.Atoi(s); err == nil {
			return i, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid year %q", y)
		}
		return floatYear(f)
	default:
		return 0, fmt.Errorf("invalid year type %T", v)
	}
}

func floatYear(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid year %v", f)
	}
	return int(f), nil
}

func parseTimestamp(v any) (time.Time, error) {
	switch t := v.(type) {
	case string:
		ts, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid upload_date %q: %w", t, err)
		}
		return ts.UTC(), nil
	case json.Number:
		ms, err := t.Int64()
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid upload_date %q: %w", t.String(), err)
		}
		return time.UnixMilli(ms).UTC(), nil
	case float64:
		return time.UnixMilli(int64(t)).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("invalid upload_date type %T", v)
	}
}

func stringField(raw map[string]any, key string) (string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", nil
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case json.Number:
		return s.String(), nil
	default:
		return "", fmt.Errorf("field %s: expected string, got %T", key, v)
	}
}

// normalizeNumbers turns json.Number values back into int64 or float64 so that
// payloads read from storage look like payloads decoded with encoding/json defaults,
// except that integers keep their precision.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, inner := range t {
			t[k] = normalizeNumbers(inner)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = normalizeNumbers(inner)
		}
		return t
	default:
		return v
	}
}
