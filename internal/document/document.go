// Package document defines the persisted habit document.
//
// On disk the document keeps the historical layout where registry metadata and the
// per-habit completion maps are sibling keys of one JSON object:
//
//	{
//	  "habits": ["Exercise", "Read"],
//	  "colors": {"Exercise": "#0A84FF"},
//	  "Exercise": {"2024-01-01": true},
//	  "Read": {}
//	}
//
// In memory the metadata and the completion maps are separate fields, so lookups never
// need to guess whether a key holds a name list or a date map.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/tOgg1/habitgrid/internal/datekey"
)

// Reserved top-level keys that can never be habit names.
const (
	KeyHabits = "habits"
	KeyColors = "colors"
)

// Completions maps a date to its completion flag. A missing key means not completed.
type Completions map[datekey.Date]bool

// Document is the serializable registry state.
type Document struct {
	Habits      []string
	Colors      map[string]string
	Completions map[string]Completions
}

// New returns an empty document.
func New() Document {
	return Document{
		Habits:      []string{},
		Colors:      map[string]string{},
		Completions: map[string]Completions{},
	}
}

// IsReserved reports whether name collides with a reserved document key.
func IsReserved(name string) bool {
	return name == KeyHabits || name == KeyColors
}

// Clone returns a deep copy of d.
func (d Document) Clone() Document {
	out := Document{
		Habits:      append([]string{}, d.Habits...),
		Colors:      make(map[string]string, len(d.Colors)),
		Completions: make(map[string]Completions, len(d.Completions)),
	}
	for name, color := range d.Colors {
		out.Colors[name] = color
	}
	for name, days := range d.Completions {
		copied := make(Completions, len(days))
		for day, done := range days {
			copied[day] = done
		}
		out.Completions[name] = copied
	}
	return out
}

// Normalize trims names, drops empty, reserved and duplicate entries, and makes sure
// every listed habit owns a completion map. Colors and completions for unlisted names
// are discarded, as are false completion entries.
func (d Document) Normalize() Document {
	out := New()
	seen := make(map[string]struct{}, len(d.Habits))
	for _, raw := range d.Habits {
		name := strings.TrimSpace(raw)
		if name == "" || IsReserved(name) {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out.Habits = append(out.Habits, name)

		days := make(Completions)
		for day, done := range d.Completions[raw] {
			if done && !day.IsZero() {
				days[day] = true
			}
		}
		out.Completions[name] = days

		if color := strings.TrimSpace(d.Colors[raw]); color != "" {
			out.Colors[name] = color
		}
	}
	return out
}

// CompletionCount returns the number of completed days across all habits.
func (d Document) CompletionCount() int {
	total := 0
	for _, days := range d.Completions {
		for _, done := range days {
			if done {
				total++
			}
		}
	}
	return total
}

// MarshalJSON writes the sibling-key layout with "habits" first, then "colors", then one
// object per habit in registry order. Dates inside each habit are sorted.
func (d Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	habits := d.Habits
	if habits == nil {
		habits = []string{}
	}
	if err := writeField(&buf, KeyHabits, habits, true); err != nil {
		return nil, err
	}

	if len(d.Colors) > 0 {
		colors := make(map[string]string, len(d.Colors))
		for _, name := range habits {
			if color, ok := d.Colors[name]; ok {
				colors[name] = color
			}
		}
		if len(colors) > 0 {
			if err := writeField(&buf, KeyColors, colors, false); err != nil {
				return nil, err
			}
		}
	}

	for _, name := range habits {
		if IsReserved(name) {
			return nil, fmt.Errorf("habit name %q is reserved", name)
		}
		if err := writeField(&buf, name, sortedDays(d.Completions[name]), false); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads both the current layout and the legacy layout without a "habits"
// key. For legacy documents the habit order is the order in which object-valued keys
// appear in the document; scalar keys (old settings such as habitsFilePath) are skipped.
func (d *Document) UnmarshalJSON(data []byte) error {
	fields, err := orderedFields(data)
	if err != nil {
		return err
	}

	out := New()
	var names []string
	haveNames := false
	for _, field := range fields {
		switch field.key {
		case KeyHabits:
			if isNull(field.raw) {
				continue
			}
			if err := json.Unmarshal(field.raw, &names); err != nil {
				return fmt.Errorf("decode %q: %w", KeyHabits, err)
			}
			haveNames = true
		case KeyColors:
			if isNull(field.raw) {
				continue
			}
			if err := json.Unmarshal(field.raw, &out.Colors); err != nil {
				return fmt.Errorf("decode %q: %w", KeyColors, err)
			}
		default:
			days, ok := decodeCompletions(field.raw)
			if !ok {
				continue
			}
			out.Completions[field.key] = days
		}
	}

	if !haveNames {
		for _, field := range fields {
			if IsReserved(field.key) {
				continue
			}
			if _, ok := out.Completions[field.key]; ok {
				names = append(names, field.key)
			}
		}
	}
	out.Habits = names
	if out.Colors == nil {
		out.Colors = map[string]string{}
	}

	*d = out.Normalize()
	return nil
}

// IsLegacy reports whether data is a document object without a "habits" list.
func IsLegacy(data []byte) bool {
	fields, err := orderedFields(data)
	if err != nil {
		return false
	}
	for _, field := range fields {
		if field.key == KeyHabits && !isNull(field.raw) {
			return false
		}
	}
	return true
}

type rawField struct {
	key string
	raw json.RawMessage
}

// orderedFields decodes a top-level JSON object keeping key order.
func orderedFields(data []byte) ([]rawField, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("decode document: expected object")
	}

	var fields []rawField
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("decode document: expected key")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode document key %q: %w", key, err)
		}
		fields = append(fields, rawField{key: key, raw: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return fields, nil
}

// decodeCompletions accepts an object of date -> bool. Entries whose key is not a valid
// date are skipped. Non-object values report ok=false.
func decodeCompletions(raw json.RawMessage) (Completions, bool) {
	var loose map[string]json.RawMessage
	if err := json.Unmarshal(raw, &loose); err != nil || loose == nil {
		return nil, false
	}
	days := make(Completions, len(loose))
	for key, value := range loose {
		day, err := datekey.Parse(key)
		if err != nil {
			continue
		}
		var done bool
		if err := json.Unmarshal(value, &done); err != nil {
			continue
		}
		if done {
			days[day] = true
		}
	}
	return days, true
}

// sortedDays returns the completed dates of days as an ordered JSON object body.
func sortedDays(days Completions) json.RawMessage {
	keys := make([]datekey.Date, 0, len(days))
	for day, done := range days {
		if done {
			keys = append(keys, day)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, day := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:true", day.String())
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

func writeField(buf *bytes.Buffer, key string, value any, first bool) error {
	if !first {
		buf.WriteByte(',')
	}
	name, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(name)
	buf.WriteByte(':')
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	buf.Write(payload)
	return nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
