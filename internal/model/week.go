package model

import (
	"fmt"
	"strings"
	"time"
)

// Convention selects the weekday a tracked week starts on.
type Convention int

const (
	MondayStart Convention = iota
	SaturdayStart
)

var (
	mondayDays   = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	saturdayDays = [7]string{"Saturday", "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}
)

// Label is the display string persisted in the Tipo_semana column.
func (c Convention) Label() string {
	if c == SaturdayStart {
		return "Saturday to Friday"
	}
	return "Monday to Sunday"
}

// Code is the short name used in flags, config and draft file names.
func (c Convention) Code() string {
	if c == SaturdayStart {
		return "saturday"
	}
	return "monday"
}

func (c Convention) String() string { return c.Label() }

// Days returns the ordered day labels of a week under c.
func (c Convention) Days() [7]string {
	if c == SaturdayStart {
		return saturdayDays
	}
	return mondayDays
}

// Offset returns how many days lie between the start of the week and a day
// with the given weekday.
func (c Convention) Offset(wd time.Weekday) int {
	mon0 := (int(wd) + 6) % 7
	if c == SaturdayStart {
		return (mon0 + 2) % 7
	}
	return mon0
}

// ParseConvention accepts a code ("monday", "sat"), a persisted label, or
// one of the legacy Spanish labels.
func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monday", "mon", "monday-start", "monday to sunday", "lunes a domingo":
		return MondayStart, nil
	case "saturday", "sat", "saturday-start", "saturday to friday", "sábado a viernes", "sabado a viernes":
		return SaturdayStart, nil
	}
	return MondayStart, fmt.Errorf("unknown week convention %q (want monday or saturday)", s)
}

// WeekIdentity is the unique key of a persisted week record.
type WeekIdentity struct {
	Job        string     `json:"job"`
	Convention Convention `json:"convention"`
	Start      time.Time  `json:"start"`
}

// StartString returns the start date as YYYY-MM-DD.
func (id WeekIdentity) StartString() string {
	return id.Start.Format(DateLayout)
}

// Key returns a composite string key for the identity.
func (id WeekIdentity) Key() string {
	return id.Job + "\x1f" + id.Convention.Code() + "\x1f" + id.StartString()
}

func (id WeekIdentity) String() string {
	return fmt.Sprintf("%s / %s / %s", id.Job, id.Convention.Label(), id.StartString())
}

// MarshalText encodes the convention as its code.
func (c Convention) MarshalText() ([]byte, error) {
	return []byte(c.Code()), nil
}

// UnmarshalText accepts anything ParseConvention does.
func (c *Convention) UnmarshalText(b []byte) error {
	v, err := ParseConvention(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}
