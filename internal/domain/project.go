package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the calendar-date layout used for project start and end dates
// everywhere they are stored, exported or shown.
const DateLayout = "2006-01-02"

// Canonical project statuses. Status is an open set; these are the values the
// local answers and facets know about.
const (
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusDelayed    = "Delayed"
	StatusPlanning   = "Planning Phase"
)

// Project is a single government procurement project record.
// Spent may exceed Budget; that is an overrun, not an invalid record.
type Project struct {
	ID          string `validate:"required"`
	Name        string `validate:"required"`
	Description string
	Status      string `validate:"required"`
	Budget      int64  `validate:"gte=0"`
	Spent       int64  `validate:"gte=0"`
	Location    string
	Ministry    string
	Contractor  string
	StartDate   time.Time `validate:"required"`
	EndDate     time.Time `validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks required fields and that money amounts are non-negative.
func (p *Project) Validate() error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return fmt.Errorf("invalid project: %s", strings.Join(msgs, ", "))
		}
		return fmt.Errorf("invalid project: %w", err)
	}
	return nil
}

// Overrun reports whether recorded spend exceeds the allocated budget.
func (p *Project) Overrun() bool {
	return p.Spent > p.Budget
}

// StartDateString returns the start date in DateLayout.
func (p *Project) StartDateString() string {
	return p.StartDate.Format(DateLayout)
}

// EndDateString returns the end date in DateLayout.
func (p *Project) EndDateString() string {
	return p.EndDate.Format(DateLayout)
}

// ParseDate parses a calendar date in DateLayout.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}
