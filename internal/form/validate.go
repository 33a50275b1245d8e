package form

import (
	"errors"
	"fmt"
	"maps"

	apperrors "github.com/agbru/lcmform/internal/errors"
)

// Field names one of the two form inputs.
type Field string

const (
	FieldX Field = "x"
	FieldY Field = "y"
)

// Fields lists the form inputs in display order.
var Fields = []Field{FieldX, FieldY}

// ParseField resolves a field name as typed by a user.
func ParseField(name string) (Field, bool) {
	switch Field(name) {
	case FieldX, FieldY:
		return Field(name), true
	}
	return "", false
}

// Validation messages.
const (
	MsgXInvalid      = "X must be a positive integer"
	MsgYInvalid      = "Y must be a positive integer"
	MsgYNotGreater   = "Y must be greater than X"
	MsgIntervalEmpty = "interval must be greater than zero"
)

// Errors maps a field to the message explaining why it was rejected.
// A field absent from the map is valid; an empty map means the input can be
// submitted.
type Errors map[Field]string

// Has reports whether f carries an error.
func (e Errors) Has(f Field) bool {
	_, ok := e[f]
	return ok
}

// Clone returns an independent copy. The copy of a nil map is an empty map.
func (e Errors) Clone() Errors {
	out := make(Errors, len(e))
	maps.Copy(out, e)
	return out
}

// Err converts the mapping into a joined error of apperrors.ValidationError
// values, in field order. It returns nil when there are no errors.
func (e Errors) Err() error {
	var errs []error
	for _, f := range Fields {
		if msg, ok := e[f]; ok {
			errs = append(errs, apperrors.ValidationError{Field: string(f), Message: msg})
		}
	}
	return errors.Join(errs...)
}

// Input is a validated pair, taken from the tolerant parse of each field.
type Input struct {
	X int64
	Y int64
}

// Label renders the interval as shown to the user.
func (in Input) Label() string {
	return fmt.Sprintf("%d to %d", in.X, in.Y)
}

// Validate decides whether the two raw values can be submitted and returns
// the failing fields. It has no side effects.
func Validate(xRaw, yRaw string) Errors {
	_, errs := ParseInput(xRaw, yRaw)
	return errs
}

// ParseInput validates the raw values and, when they are valid, returns the
// integers to send. The returned Input is the zero value whenever errs is
// non-empty.
func ParseInput(xRaw, yRaw string) (Input, Errors) {
	errs := Errors{}

	x, xOK := positiveInteger(xRaw)
	if !xOK {
		errs[FieldX] = MsgXInvalid
	}
	y, yOK := positiveInteger(yRaw)
	if !yOK {
		errs[FieldY] = MsgYInvalid
	}

	if len(errs) == 0 && x >= y {
		errs[FieldY] = MsgYNotGreater
	}
	// Unreachable while the check above holds; kept as a separate guard.
	if len(errs) == 0 && y-x <= 0 {
		errs[FieldY] = MsgIntervalEmpty
	}

	if len(errs) > 0 {
		return Input{}, errs
	}
	return Input{X: x, Y: y}, errs
}

// positiveInteger applies the per-field base rule. The tolerant and strict
// parses are independent guards and both must accept the value.
func positiveInteger(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	v, ok := parseIntPrefix(raw)
	if !ok || v <= 0 {
		return 0, false
	}
	if f, ok := parseNumberStrict(raw); !ok || !isInteger(f) {
		return 0, false
	}
	return v, true
}
