package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tOgg1/habitgrid/internal/document"
)

// Validation errors. Mutators report these as a false return; the Check helpers
// expose the reason for callers that want to show a message.
var (
	ErrEmptyName     = errors.New("habit name is empty")
	ErrReservedName  = errors.New("habit name is reserved")
	ErrDuplicateName = errors.New("habit already exists")
	ErrUnknownHabit  = errors.New("habit not found")
)

// CheckAdd explains why AddHabit(name) would fail, or returns nil.
func (r *Registry) CheckAdd(name string) error {
	trimmed := strings.TrimSpace(name)
	if err := checkName(trimmed); err != nil {
		return err
	}
	if r.Has(trimmed) {
		return fmt.Errorf("%w: %s", ErrDuplicateName, trimmed)
	}
	return nil
}

// CheckRename explains why RenameHabit(oldName, newName) would fail, or returns nil.
func (r *Registry) CheckRename(oldName, newName string) error {
	trimmed := strings.TrimSpace(newName)
	if err := checkName(trimmed); err != nil {
		return err
	}
	if !r.Has(oldName) {
		return fmt.Errorf("%w: %s", ErrUnknownHabit, oldName)
	}
	if trimmed != oldName && r.Has(trimmed) {
		return fmt.Errorf("%w: %s", ErrDuplicateName, trimmed)
	}
	return nil
}

// CheckExists returns ErrUnknownHabit when name is not registered.
func (r *Registry) CheckExists(name string) error {
	if !r.Has(name) {
		return fmt.Errorf("%w: %s", ErrUnknownHabit, name)
	}
	return nil
}

func checkName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if document.IsReserved(name) {
		return fmt.Errorf("%w: %s", ErrReservedName, name)
	}
	return nil
}
