// Package importer reads habit names from a markdown list.
package importer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/tOgg1/habitgrid/internal/registry"
)

var (
	checkboxItem = regexp.MustCompile(`(?i)^[-*]\s*\[[ x]\]\s*(.+)$`)
	bulletItem   = regexp.MustCompile(`^[-*]\s+(.+)$`)
	numberedItem = regexp.MustCompile(`^\d+\.\s+(.+)$`)
)

// Parse returns the habit names listed in text, in order. Checkbox items
// ("- [ ] name", "* [x] name"), bullets ("- name", "* name") and numbered items
// ("1. name") are recognised; every other line is ignored.
func Parse(text string) []string {
	names, _ := Read(strings.NewReader(text))
	return names
}

// Read is Parse over a reader.
func Read(r io.Reader) ([]string, error) {
	var names []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if name, ok := parseLine(scanner.Text()); ok {
			names = append(names, name)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// ParseFile reads and parses the markdown file at path.
func ParseFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open habits file: %w", err)
	}
	defer f.Close()

	names, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read habits file %s: %w", path, err)
	}
	return names, nil
}

// Apply adds every name not yet in reg and returns the names that were added.
// Names the registry rejects are skipped.
func Apply(reg *registry.Registry, names []string) []string {
	var added []string
	for _, name := range names {
		if reg.AddHabit(name) {
			added = append(added, strings.TrimSpace(name))
		}
	}
	return added
}

func parseLine(line string) (string, bool) {
	line = strings.TrimSpace(line)
	for _, re := range []*regexp.Regexp{checkboxItem, bulletItem, numberedItem} {
		if m := re.FindStringSubmatch(line); m != nil {
			name := strings.TrimSpace(m[1])
			return name, name != ""
		}
	}
	return "", false
}
