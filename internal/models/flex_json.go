package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
)

// flexFieldMaps caches normalized JSON key -> struct field index per type
var flexFieldMaps sync.Map

var timeType = reflect.TypeOf(time.Time{})

// dateLayouts are tried in order when a date arrives as a string
var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// normalizeKey folds snake_case, kebab-case and camelCase onto one spelling,
// so "winner_id", "winnerId" and "WinnerID" all resolve to the same field.
func normalizeKey(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "")
	return strings.ReplaceAll(s, "-", "")
}

func flexFieldMap(t reflect.Type) map[string]int {
	if m, ok := flexFieldMaps.Load(t); ok {
		return m.(map[string]int)
	}
	m := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag := f.Tag.Get("json"); tag != "" {
			if tag == "-" {
				continue
			}
			if n := strings.Split(tag, ",")[0]; n != "" {
				name = n
			}
		}
		m[normalizeKey(name)] = i
	}
	flexFieldMaps.Store(t, m)
	return m
}

// flexUnmarshal decodes a JSON object into the struct pointed to by v,
// accepting key spellings from any casing convention and coercing
// string-encoded numbers, bools and dates. The web client and seed scripts
// send camelCase keys and quoted numbers; this keeps both working.
func flexUnmarshal(data []byte, v interface{}) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("flex unmarshal: %w", err)
	}

	rv := reflect.ValueOf(v).Elem()
	fieldMap := flexFieldMap(rv.Type())

	for key, rawVal := range raw {
		idx, ok := fieldMap[normalizeKey(key)]
		if !ok {
			continue
		}

		fv := rv.Field(idx)
		if !fv.CanSet() {
			continue
		}

		ptr := reflect.New(fv.Type())
		if err := json.Unmarshal(rawVal, ptr.Interface()); err == nil {
			fv.Set(ptr.Elem())
			continue
		}

		// Value is a JSON string but target is numeric/bool/date; coerce
		if len(rawVal) > 1 && rawVal[0] == '"' {
			var s string
			if err := json.Unmarshal(rawVal, &s); err != nil {
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if err := coerceStringToField(fv, s); err != nil {
				return fmt.Errorf("flex unmarshal %q: %w", key, err)
			}
		}
	}

	return nil
}

// coerceStringToField converts a string value to the field's native type.
func coerceStringToField(fv reflect.Value, s string) error {
	if fv.Type() == timeType {
		t, err := parseFlexTime(s)
		if err != nil {
			return err
		}
		fv.Set(reflect.ValueOf(t))
		return nil
	}
	if fv.Kind() == reflect.Ptr && fv.Type().Elem() == timeType {
		t, err := parseFlexTime(s)
		if err != nil {
			return err
		}
		fv.Set(reflect.ValueOf(&t))
		return nil
	}

	switch fv.Kind() {
	case reflect.Float32, reflect.Float64:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		fv.SetFloat(n)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// ParseFloat handles "5.0" → truncate to int
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		fv.SetInt(int64(n))
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.String:
		fv.SetString(s)
	}
	return nil
}

func parseFlexTime(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func (r *CreatePredictionRequest) UnmarshalJSON(data []byte) error {
	type Alias CreatePredictionRequest
	return flexUnmarshal(data, (*Alias)(r))
}

func (r *RecordResultRequest) UnmarshalJSON(data []byte) error {
	type Alias RecordResultRequest
	return flexUnmarshal(data, (*Alias)(r))
}

func (m *MatchIngest) UnmarshalJSON(data []byte) error {
	type Alias MatchIngest
	return flexUnmarshal(data, (*Alias)(m))
}

func (w *Wrestler) UnmarshalJSON(data []byte) error {
	type Alias Wrestler
	return flexUnmarshal(data, (*Alias)(w))
}
