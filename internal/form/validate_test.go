package form

import (
	"errors"
	"math"
	"strconv"
	"testing"

	apperrors "github.com/agbru/lcmform/internal/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestParseInput(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		x, y      string
		wantInput Input
		wantErrs  Errors
	}{
		{"valid interval", "1", "10", Input{X: 1, Y: 10}, Errors{}},
		{"both empty", "", "", Input{}, Errors{FieldX: MsgXInvalid, FieldY: MsgYInvalid}},
		{"trailing garbage fails strict parse", "12abc", "20", Input{}, Errors{FieldX: MsgXInvalid}},
		{"exponent passes both guards with prefix value", "1e3", "2000", Input{X: 1, Y: 2000}, Errors{}},
		{"fraction", "1.5", "3", Input{}, Errors{FieldX: MsgXInvalid}},
		{"integral fraction", "1.0", "3", Input{X: 1, Y: 3}, Errors{}},
		{"trailing dot", "7.", "9", Input{X: 7, Y: 9}, Errors{}},
		{"zero", "0", "5", Input{}, Errors{FieldX: MsgXInvalid}},
		{"negative", "-3", "5", Input{}, Errors{FieldX: MsgXInvalid}},
		{"hex literals", "0x10", "0x20", Input{X: 16, Y: 32}, Errors{}},
		{"binary literal reads as zero prefix", "0b101", "9", Input{}, Errors{FieldX: MsgXInvalid}},
		{"surrounding whitespace", " 7 ", "\t9\n", Input{X: 7, Y: 9}, Errors{}},
		{"whitespace only", "   ", "9", Input{}, Errors{FieldX: MsgXInvalid}},
		{"no-break space and byte order mark", "\u00a07", "\ufeff9", Input{X: 7, Y: 9}, Errors{}},
		{"next line is not whitespace", "\u00855", "100", Input{}, Errors{FieldX: MsgXInvalid}},
		{"trailing next line", "5", "100\u0085", Input{}, Errors{FieldY: MsgYInvalid}},
		{"equal values", "5", "5", Input{}, Errors{FieldY: MsgYNotGreater}},
		{"reversed interval", "10", "1", Input{}, Errors{FieldY: MsgYNotGreater}},
		{"invalid x skips ordering", "abc", "5", Input{}, Errors{FieldX: MsgXInvalid}},
		{"invalid y skips ordering", "50", "x", Input{}, Errors{FieldY: MsgYInvalid}},
		{"overflow", "99999999999999999999", "1", Input{}, Errors{FieldX: MsgXInvalid}},
		{"infinity", "Infinity", "5", Input{}, Errors{FieldX: MsgXInvalid}},
		{"plus sign", "+2", "+4", Input{X: 2, Y: 4}, Errors{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			input, errs := ParseInput(tt.x, tt.y)
			if diff := cmp.Diff(tt.wantErrs, errs); diff != "" {
				t.Errorf("ParseInput(%q, %q) errors mismatch (-want +got):\n%s", tt.x, tt.y, diff)
			}
			if input != tt.wantInput {
				t.Errorf("ParseInput(%q, %q) input = %+v, want %+v", tt.x, tt.y, input, tt.wantInput)
			}
			if diff := cmp.Diff(errs, Validate(tt.x, tt.y)); diff != "" {
				t.Errorf("Validate disagrees with ParseInput (-parse +validate):\n%s", diff)
			}
		})
	}
}

func TestParseIntPrefix(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"42", 42, true},
		{"  42abc", 42, true},
		{"-7", -7, true},
		{"0x1F", 31, true},
		{"0xg", 0, false},
		{"0x", 0, false},
		{"1e3", 1, true},
		{"3.9", 3, true},
		{"", 0, false},
		{"+", 0, false},
		{"abc", 0, false},
		{"9223372036854775808", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseIntPrefix(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("parseIntPrefix(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseNumberStrict(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"", 0, true},
		{"  ", 0, true},
		{"10", 10, true},
		{" 10 ", 10, true},
		{"1e3", 1000, true},
		{"1.25", 1.25, true},
		{".5", 0.5, true},
		{"5.", 5, true},
		{"-2", -2, true},
		{"0x10", 16, true},
		{"0o17", 15, true},
		{"0b11", 3, true},
		{"-0x10", 0, false},
		{"0x", 0, false},
		{"0b2", 0, false},
		{"1_000", 0, false},
		{"12abc", 0, false},
		{"inf", 0, false},
		{"NaN", 0, false},
		{"Infinity", math.Inf(1), true},
		{"-Infinity", math.Inf(-1), true},
		{"1e400", math.Inf(1), true},
	}
	for _, tt := range tests {
		got, ok := parseNumberStrict(tt.in)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("parseNumberStrict(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestIsInteger(t *testing.T) {
	t.Parallel()
	for _, f := range []float64{0, 1, -4, 1e15} {
		if !isInteger(f) {
			t.Errorf("isInteger(%v) = false", f)
		}
	}
	for _, f := range []float64{0.5, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if isInteger(f) {
			t.Errorf("isInteger(%v) = true", f)
		}
	}
}

func TestErrors(t *testing.T) {
	t.Parallel()

	errs := Errors{FieldY: MsgYNotGreater, FieldX: MsgXInvalid}
	err := errs.Err()

	var validationErr apperrors.ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "x" {
		t.Fatalf("first joined error should be for x, got %v", err)
	}
	if got := apperrors.ExitCodeFor(err); got != apperrors.ExitErrorValidation {
		t.Errorf("ExitCodeFor = %d, want %d", got, apperrors.ExitErrorValidation)
	}
	if (Errors{}).Err() != nil {
		t.Error("empty Errors should convert to nil")
	}

	clone := errs.Clone()
	delete(clone, FieldX)
	if !errs.Has(FieldX) {
		t.Error("Clone must not share storage")
	}
	if (Errors(nil)).Clone() == nil {
		t.Error("Clone of nil should be an empty map")
	}
}

func TestParseField(t *testing.T) {
	t.Parallel()
	if f, ok := ParseField("y"); !ok || f != FieldY {
		t.Errorf("ParseField(y) = %q, %v", f, ok)
	}
	if _, ok := ParseField("z"); ok {
		t.Error("ParseField(z) should fail")
	}
}

func TestValidate_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("non-numeric input is rejected on its own field", prop.ForAll(
		func(s string) bool {
			return Validate(s, "10").Has(FieldX) && Validate("1", s).Has(FieldY)
		},
		gen.AlphaString(),
	))

	properties.Property("positive integers with x < y are accepted", prop.ForAll(
		func(x, gap int64) bool {
			y := x + gap
			return len(Validate(strconv.FormatInt(x, 10), strconv.FormatInt(y, 10))) == 0
		},
		gen.Int64Range(1, 1<<40),
		gen.Int64Range(1, 1<<40),
	))

	properties.Property("positive integers with x >= y are rejected on y only", prop.ForAll(
		func(y, gap int64) bool {
			x := y + gap
			errs := Validate(strconv.FormatInt(x, 10), strconv.FormatInt(y, 10))
			return len(errs) == 1 && errs[FieldY] == MsgYNotGreater
		},
		gen.Int64Range(1, 1<<40),
		gen.Int64Range(0, 1<<40),
	))

	properties.Property("Validate is deterministic", prop.ForAll(
		func(x, y string) bool {
			return cmp.Equal(Validate(x, y), Validate(x, y))
		},
		gen.AnyString(),
		gen.AnyString(),
	))

	properties.Property("accepted input round-trips through the tolerant parse", prop.ForAll(
		func(x, gap int64) bool {
			in, errs := ParseInput(strconv.FormatInt(x, 10), strconv.FormatInt(x+gap, 10))
			return len(errs) == 0 && in.X == x && in.Y == x+gap
		},
		gen.Int64Range(1, 1<<40),
		gen.Int64Range(1, 1<<40),
	))

	properties.TestingRun(t)
}
