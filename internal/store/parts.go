package store

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
)

var labourPattern = regexp.MustCompile(`(?i)labou?r`)

const (
	labourStep = 0.5
	unitStep   = 1.0
)

// Part is one line of the parts/labour list on a job.
type Part struct {
	Description string  `json:"description"`
	Qty         float64 `json:"qty"`
}

// IsLabour reports whether the part is billed labour time.
func (p Part) IsLabour() bool {
	return labourPattern.MatchString(p.Description)
}

// Step is the quantity increment for the part: half hours for labour,
// whole units for everything else.
func (p Part) Step() float64 {
	if p.IsLabour() {
		return labourStep
	}
	return unitStep
}

// RoundToStep rounds qty to the nearest multiple of step.
func RoundToStep(qty, step float64) float64 {
	return math.Round(qty/step) * step
}

// Parts is the ordered parts list. It is persisted as JSON (parts_json).
type Parts []Part

// Clone returns a copy that shares no memory with p.
func (p Parts) Clone() Parts {
	if p == nil {
		return nil
	}
	out := make(Parts, len(p))
	copy(out, p)
	return out
}

// Value implements driver.Valuer.
func (p Parts) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (p *Parts) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*p = nil
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("parts: unsupported scan type %T", src)
	}
	if len(b) == 0 {
		*p = nil
		return nil
	}
	var parts Parts
	if err := json.Unmarshal(b, &parts); err != nil {
		return fmt.Errorf("parts: %w", err)
	}
	*p = parts
	return nil
}
