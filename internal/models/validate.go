package models

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/julianstephens/jadwal/internal/utils"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

func (s TimeSlot) Validate() error {
	if err := validatorInstance().Struct(s); err != nil {
		return fmt.Errorf("invalid time slot: %w", err)
	}
	return checkWindow(s.StartTime, s.EndTime)
}

// Validate checks the structural invariants the timetable relies on: at least
// one day and start strictly before end for every window.
func (c *Course) Validate() error {
	if err := validatorInstance().Struct(c); err != nil {
		return fmt.Errorf("invalid course %q: %w", c.ID, err)
	}
	if err := checkWindow(c.StartTime, c.EndTime); err != nil {
		return fmt.Errorf("invalid course %q: %w", c.ID, err)
	}
	for i, slot := range c.TimeSlots {
		if err := checkWindow(slot.StartTime, slot.EndTime); err != nil {
			return fmt.Errorf("invalid course %q slot %d: %w", c.ID, i, err)
		}
	}
	return nil
}

func checkWindow(start, end string) error {
	s, err := utils.ParseTimeToMinutes(start)
	if err != nil {
		return fmt.Errorf("invalid start time %q: %w", start, err)
	}
	e, err := utils.ParseTimeToMinutes(end)
	if err != nil {
		return fmt.Errorf("invalid end time %q: %w", end, err)
	}
	if s >= e {
		return fmt.Errorf("start time %s must be before end time %s", start, end)
	}
	return nil
}
