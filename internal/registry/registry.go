// Package registry owns the ordered set of habits and their completion history.
//
// A Registry is a single-mutator structure: every operation completes before it
// returns and no locks are taken. After each mutation that changes state, a snapshot
// of the registry is handed to the configured Committer. The committer is expected to
// persist asynchronously; the registry never waits for it and never sees its errors.
package registry

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tOgg1/habitgrid/internal/datekey"
	"github.com/tOgg1/habitgrid/internal/document"
	"github.com/tOgg1/habitgrid/internal/logging"
)

// StreakHorizon bounds how many days Streak walks back.
const StreakHorizon = 365

// Committer receives registry snapshots after mutations.
type Committer interface {
	Submit(doc document.Document)
}

type record struct {
	completions document.Completions
	color       string
}

// Registry holds habits in insertion order together with their records.
type Registry struct {
	order   []string
	records map[string]*record

	committer Committer
	now       func() time.Time
	logger    zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithCommitter sets the snapshot sink used after mutations.
func WithCommitter(c Committer) Option {
	return func(r *Registry) {
		r.committer = c
	}
}

// WithNow overrides the clock used for "today".
func WithNow(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger overrides the registry logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// New returns an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		records: make(map[string]*record),
		now:     time.Now,
		logger:  logging.Component("registry"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FromDocument builds a registry from a persisted document. Loading does not commit.
func FromDocument(doc document.Document, opts ...Option) *Registry {
	r := New(opts...)
	r.load(doc)
	return r
}

// Load replaces the registry contents with doc without committing.
func (r *Registry) Load(doc document.Document) {
	r.load(doc)
}

func (r *Registry) load(doc document.Document) {
	doc = doc.Normalize()
	r.order = make([]string, 0, len(doc.Habits))
	r.records = make(map[string]*record, len(doc.Habits))
	for _, name := range doc.Habits {
		r.order = append(r.order, name)
		r.records[name] = &record{
			completions: doc.Completions[name],
			color:       doc.Colors[name],
		}
	}
}

// Snapshot returns a deep copy of the registry as a document.
func (r *Registry) Snapshot() document.Document {
	doc := document.New()
	for _, name := range r.order {
		rec := r.records[name]
		doc.Habits = append(doc.Habits, name)
		days := make(document.Completions, len(rec.completions))
		for day, done := range rec.completions {
			if done {
				days[day] = true
			}
		}
		doc.Completions[name] = days
		if rec.color != "" {
			doc.Colors[name] = rec.color
		}
	}
	return doc
}

// Habits returns the habit names in registry order.
func (r *Registry) Habits() []string {
	return append([]string{}, r.order...)
}

// Len returns the number of habits.
func (r *Registry) Len() int {
	return len(r.order)
}

// Has reports whether name is a registered habit.
func (r *Registry) Has(name string) bool {
	_, ok := r.records[name]
	return ok
}

// Today returns the registry's notion of the current local date.
func (r *Registry) Today() datekey.Date {
	return datekey.Today(r.now)
}

// AddHabit appends a new, empty habit. It returns false when the trimmed name is
// empty, reserved or already registered.
func (r *Registry) AddHabit(name string) bool {
	if err := r.CheckAdd(name); err != nil {
		r.logger.Debug().Str("habit", name).Err(err).Msg("add rejected")
		return false
	}
	name = strings.TrimSpace(name)
	r.order = append(r.order, name)
	r.records[name] = &record{completions: make(document.Completions)}
	r.commit()
	return true
}

// RemoveHabit deletes a habit with its completions and color.
func (r *Registry) RemoveHabit(name string) bool {
	idx := r.indexOf(name)
	if idx < 0 {
		return false
	}
	r.order = append(r.order[:idx], r.order[idx+1:]...)
	delete(r.records, name)
	r.commit()
	return true
}

// RenameHabit moves a habit to a new name, keeping its position, completions and
// color. Renaming to the same name is a successful no-op.
func (r *Registry) RenameHabit(oldName, newName string) bool {
	if err := r.CheckRename(oldName, newName); err != nil {
		r.logger.Debug().Str("habit", oldName).Str("new_name", newName).Err(err).Msg("rename rejected")
		return false
	}
	newName = strings.TrimSpace(newName)
	if newName == oldName {
		return true
	}
	idx := r.indexOf(oldName)
	rec := r.records[oldName]
	r.order[idx] = newName
	r.records[newName] = rec
	delete(r.records, oldName)
	r.commit()
	return true
}

// ToggleHabit flips the completion of name on date and returns the new value.
// Unknown habits are rejected and report false.
func (r *Registry) ToggleHabit(name string, date datekey.Date) bool {
	rec, ok := r.records[name]
	if !ok || date.IsZero() {
		r.logger.Debug().Str("habit", name).Str("date", date.String()).Msg("toggle rejected")
		return false
	}
	done := !rec.completions[date]
	if done {
		rec.completions[date] = true
	} else {
		delete(rec.completions, date)
	}
	r.commit()
	return done
}

// SetCompleted sets the completion of name on date explicitly. It reports whether the
// habit exists; no commit happens when the value is unchanged.
func (r *Registry) SetCompleted(name string, date datekey.Date, done bool) bool {
	rec, ok := r.records[name]
	if !ok || date.IsZero() {
		return false
	}
	if rec.completions[date] == done {
		return true
	}
	if done {
		rec.completions[date] = true
	} else {
		delete(rec.completions, date)
	}
	r.commit()
	return true
}

// IsCompleted reports whether name was completed on date. Unknown habits and dates
// are simply not completed.
func (r *Registry) IsCompleted(name string, date datekey.Date) bool {
	rec, ok := r.records[name]
	if !ok {
		return false
	}
	return rec.completions[date]
}

// Lookup returns a read-only completion oracle for name. The oracle reads the live
// registry, so it reflects later toggles.
func (r *Registry) Lookup(name string) func(datekey.Date) bool {
	return func(date datekey.Date) bool {
		return r.IsCompleted(name, date)
	}
}

// SetColor assigns a display color to a habit. Unknown habits are ignored. An empty
// color clears the assignment.
func (r *Registry) SetColor(name, color string) {
	rec, ok := r.records[name]
	if !ok {
		return
	}
	color = strings.TrimSpace(color)
	if rec.color == color {
		return
	}
	rec.color = color
	r.commit()
}

// Color returns the color assigned to name, if any.
func (r *Registry) Color(name string) (string, bool) {
	rec, ok := r.records[name]
	if !ok || rec.color == "" {
		return "", false
	}
	return rec.color, true
}

// CompletedDays returns the number of completed days recorded for name.
func (r *Registry) CompletedDays(name string) int {
	rec, ok := r.records[name]
	if !ok {
		return 0
	}
	return len(rec.completions)
}

func (r *Registry) indexOf(name string) int {
	for i, existing := range r.order {
		if existing == name {
			return i
		}
	}
	return -1
}

func (r *Registry) commit() {
	if r.committer == nil {
		return
	}
	r.committer.Submit(r.Snapshot())
}
