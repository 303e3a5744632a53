package lifecycle

import (
	"errors"
	"fmt"
	"strings"

	"fieldops/internal/store"
)

var (
	ErrNegativeQuantity = errors.New("part quantity cannot be negative")
	ErrPartIndex        = errors.New("part index out of range")
	ErrPartIndexMissing = errors.New("part index is required")
	ErrPartDescription  = errors.New("part description is required")
	ErrUnknownPartsOp   = errors.New("unknown parts operation")
)

// PartsOp names an edit of the parts list.
type PartsOp string

const (
	PartsOpAdd    PartsOp = "add"
	PartsOpRemove PartsOp = "remove"
	PartsOpAdjust PartsOp = "adjust"
	PartsOpSet    PartsOp = "set"
)

// TargetsPart reports whether op edits an existing part by index.
func (op PartsOp) TargetsPart() bool {
	return op == PartsOpRemove || op == PartsOpAdjust || op == PartsOpSet
}

// PartsEdit is one edit of a job's parts list.
//
//	add:    append Description with qty 1
//	remove: drop the part at Index
//	adjust: move the part at Index by Steps steps (0.5 for labour, else 1)
//	set:    set the part at Index to Qty, rounded to its step
type PartsEdit struct {
	Op          PartsOp
	Description string
	Index       int
	Steps       int
	Qty         float64
}

// ApplyPartsEdit returns a new list with edit applied. parts is not modified.
// A quantity that would go below zero is rejected with ErrNegativeQuantity.
func ApplyPartsEdit(parts store.Parts, edit PartsEdit) (store.Parts, error) {
	out := parts.Clone()

	switch edit.Op {
	case PartsOpAdd:
		desc := strings.TrimSpace(edit.Description)
		if desc == "" {
			return nil, ErrPartDescription
		}
		return append(out, store.Part{Description: desc, Qty: 1}), nil

	case PartsOpRemove:
		if err := checkIndex(out, edit.Index); err != nil {
			return nil, err
		}
		return append(out[:edit.Index], out[edit.Index+1:]...), nil

	case PartsOpAdjust:
		if err := checkIndex(out, edit.Index); err != nil {
			return nil, err
		}
		p := &out[edit.Index]
		step := p.Step()
		qty := store.RoundToStep(p.Qty+float64(edit.Steps)*step, step)
		if qty < 0 {
			return nil, ErrNegativeQuantity
		}
		p.Qty = qty
		return out, nil

	case PartsOpSet:
		if err := checkIndex(out, edit.Index); err != nil {
			return nil, err
		}
		if edit.Qty < 0 {
			return nil, ErrNegativeQuantity
		}
		p := &out[edit.Index]
		p.Qty = store.RoundToStep(edit.Qty, p.Step())
		return out, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPartsOp, string(edit.Op))
}

func checkIndex(parts store.Parts, i int) error {
	if i < 0 || i >= len(parts) {
		return fmt.Errorf("%w: %d (have %d)", ErrPartIndex, i, len(parts))
	}
	return nil
}

// SanitizeParts clamps negative quantities to zero, rounds every quantity
// to its step and drops lines without a description.
func SanitizeParts(parts store.Parts) store.Parts {
	if parts == nil {
		return nil
	}
	out := make(store.Parts, 0, len(parts))
	for _, p := range parts {
		p.Description = strings.TrimSpace(p.Description)
		if p.Description == "" {
			continue
		}
		if p.Qty < 0 {
			p.Qty = 0
		}
		p.Qty = store.RoundToStep(p.Qty, p.Step())
		out = append(out, p)
	}
	return out
}
