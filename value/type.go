package value

import (
	"log/slog"
	"math"
	"strconv"
)

// Type is the declared type of a parameter.
type Type uint8

const (
	TypeString Type = iota
	TypeInt
	TypeDouble
	TypeUnsignedInt
	TypeUnsignedShort
	TypeBoolean
	TypeDateTime
)

var typeName = [...]string{
	TypeString:        "string",
	TypeInt:           "int",
	TypeDouble:        "double",
	TypeUnsignedInt:   "unsignedInt",
	TypeUnsignedShort: "unsignedShort",
	TypeBoolean:       "boolean",
	TypeDateTime:      "dateTime",
}

func (t Type) String() string {
	if int(t) < len(typeName) {
		return typeName[t]
	}

	return "Type(" + strconv.Itoa(int(t)) + ")"
}

// ParseType parses a declared parameter type name. Both "int" and the older
// "integer" spelling are accepted.
func ParseType(s string) (Type, error) {
	if s == "integer" {
		return TypeInt, nil
	}

	for t, name := range typeName {
		if name == s {
			return Type(t), nil
		}
	}

	return 0, ErrUnknownType.With(slog.String("type", s))
}

// Validate reports whether s is a valid literal of type t.
func (t Type) Validate(s string) error {
	var err error

	switch t {
	case TypeString:
	case TypeInt:
		_, err = Int.Parse(s)
	case TypeDouble:
		_, err = Double.Parse(s)
	case TypeUnsignedInt:
		_, err = UnsignedInt.Parse(s)
	case TypeUnsignedShort:
		_, err = UnsignedShort.Parse(s)
	case TypeBoolean:
		_, err = Boolean.Parse(s)
	case TypeDateTime:
		_, err = DateTime.Parse(s)
	default:
		return ErrUnknownType.With(slog.String("type", t.String()))
	}

	if err != nil {
		return ErrTypeMismatch.Wrap(err).With(
			slog.String("expected", t.String()),
			slog.String("got", s),
		)
	}

	return nil
}

// Integral reports whether t holds whole numbers.
func (t Type) Integral() bool {
	return t == TypeInt || t == TypeUnsignedInt || t == TypeUnsignedShort
}

// FormatNumber formats a computed numeric value as a literal of type t.
// Integral types round to the nearest whole number.
func (t Type) FormatNumber(v float64) string {
	if t.Integral() {
		return strconv.FormatInt(int64(math.Round(v)), 10)
	}

	return FormatDouble(v)
}
