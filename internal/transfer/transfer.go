// Package transfer converts habit documents to and from portable export files.
package transfer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tOgg1/habitgrid/internal/datekey"
	"github.com/tOgg1/habitgrid/internal/document"
	"github.com/tOgg1/habitgrid/internal/registry"
)

// Format names an export encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ErrUnknownFormat is returned for unsupported format names.
var ErrUnknownFormat = errors.New("unknown format")

// ParseFormat resolves a format name, accepting "yml" and "md" as aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// FormatForPath guesses the format of a file from its extension. Anything that is not
// JSON or YAML is treated as a markdown habit list.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatMarkdown
	}
}

// yamlDocument is the YAML shape of a document. Completions list completed days.
type yamlDocument struct {
	Habits      []string            `yaml:"habits"`
	Colors      map[string]string   `yaml:"colors,omitempty"`
	Completions map[string][]string `yaml:"completions,omitempty"`
}

// Write encodes doc to w in format. The markdown format writes only the habit list.
func Write(w io.Writer, doc document.Document, format Format) error {
	doc = doc.Normalize()
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(toYAML(doc)); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatMarkdown:
		for _, name := range doc.Habits {
			if _, err := fmt.Fprintf(w, "- %s\n", name); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Decode parses a JSON or YAML export into a document.
func Decode(data []byte, format Format) (document.Document, error) {
	switch format {
	case FormatJSON:
		var doc document.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return document.Document{}, fmt.Errorf("decode json: %w", err)
		}
		return doc.Normalize(), nil
	case FormatYAML:
		var yd yamlDocument
		if err := yaml.Unmarshal(data, &yd); err != nil {
			return document.Document{}, fmt.Errorf("decode yaml: %w", err)
		}
		return fromYAML(yd)
	default:
		return document.Document{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

func toYAML(doc document.Document) yamlDocument {
	yd := yamlDocument{
		Habits:      append([]string{}, doc.Habits...),
		Colors:      doc.Colors,
		Completions: make(map[string][]string, len(doc.Completions)),
	}
	for name, days := range doc.Completions {
		dates := make([]string, 0, len(days))
		for day, done := range days {
			if done {
				dates = append(dates, day.String())
			}
		}
		if len(dates) == 0 {
			continue
		}
		sort.Strings(dates)
		yd.Completions[name] = dates
	}
	if len(yd.Colors) == 0 {
		yd.Colors = nil
	}
	return yd
}

func fromYAML(yd yamlDocument) (document.Document, error) {
	doc := document.New()
	doc.Habits = append(doc.Habits, yd.Habits...)
	for name, color := range yd.Colors {
		doc.Colors[name] = color
	}
	for name, dates := range yd.Completions {
		days := make(document.Completions, len(dates))
		for _, raw := range dates {
			day, err := datekey.Parse(raw)
			if err != nil {
				return document.Document{}, fmt.Errorf("habit %s: %w", name, err)
			}
			days[day] = true
		}
		doc.Completions[name] = days
	}
	return doc.Normalize(), nil
}

// Result summarises a Merge.
type Result struct {
	Added       []string
	Completions int
	Colors      int
}

// Merge folds doc into reg. Missing habits are appended in document order, recorded
// completions are set and colors fill habits that have none. Existing completions are
// never cleared.
func Merge(reg *registry.Registry, doc document.Document) Result {
	var res Result
	doc = doc.Normalize()
	for _, name := range doc.Habits {
		if !reg.Has(name) {
			if !reg.AddHabit(name) {
				continue
			}
			res.Added = append(res.Added, name)
		}
		days := make([]datekey.Date, 0, len(doc.Completions[name]))
		for day, done := range doc.Completions[name] {
			if done {
				days = append(days, day)
			}
		}
		sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
		for _, day := range days {
			if reg.IsCompleted(name, day) {
				continue
			}
			reg.SetCompleted(name, day, true)
			res.Completions++
		}
		if color := doc.Colors[name]; color != "" {
			if _, ok := reg.Color(name); !ok {
				reg.SetColor(name, color)
				res.Colors++
			}
		}
	}
	return res
}
