package value

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// Codec converts between the textual and native form of one primitive type.
type Codec[T any] interface {
	// Name is the type's name as written in parameter declarations.
	Name() string
	Parse(s string) (T, error)
	Format(v T) string
}

type codec[T any] struct {
	name   string
	parse  func(string) (T, error)
	format func(T) string
}

func (c codec[T]) Name() string              { return c.name }
func (c codec[T]) Parse(s string) (T, error) { return c.parse(s) }
func (c codec[T]) Format(v T) string         { return c.format(v) }

// Codecs for the primitive types of a scenario document.
//
//nolint:gochecknoglobals
var (
	Double Codec[float64] = codec[float64]{
		name:   "double",
		parse:  func(s string) (float64, error) { return strconv.ParseFloat(strings.TrimSpace(s), 64) },
		format: FormatDouble,
	}

	Int Codec[int32] = codec[int32]{
		name: "int",
		parse: func(s string) (int32, error) {
			n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)

			return int32(n), err
		},
		format: func(v int32) string { return strconv.FormatInt(int64(v), 10) },
	}

	UnsignedInt Codec[uint32] = codec[uint32]{
		name: "unsignedInt",
		parse: func(s string) (uint32, error) {
			n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)

			return uint32(n), err
		},
		format: func(v uint32) string { return strconv.FormatUint(uint64(v), 10) },
	}

	UnsignedShort Codec[uint16] = codec[uint16]{
		name: "unsignedShort",
		parse: func(s string) (uint16, error) {
			n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)

			return uint16(n), err
		},
		format: func(v uint16) string { return strconv.FormatUint(uint64(v), 10) },
	}

	Boolean Codec[bool] = codec[bool]{
		name:   "boolean",
		parse:  parseBoolean,
		format: strconv.FormatBool,
	}

	String Codec[string] = codec[string]{
		name:   "string",
		parse:  func(s string) (string, error) { return s, nil },
		format: func(s string) string { return s },
	}

	DateTime Codec[time.Time] = codec[time.Time]{
		name:   "dateTime",
		parse:  parseDateTime,
		format: func(t time.Time) string { return t.Format(time.RFC3339Nano) },
	}
)

var errSyntax = errors.New("invalid syntax")

// parseBoolean accepts the XML Schema lexical forms of a boolean.
func parseBoolean(s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, errSyntax
	}
}

func parseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}

	// xsd:dateTime permits an omitted time zone.
	if t, lerr := time.Parse("2006-01-02T15:04:05.999999999", s); lerr == nil {
		return t, nil
	}

	return time.Time{}, err
}

// FormatDouble formats v in the shortest form that parses back to v,
// without an exponent for whole numbers of moderate magnitude.
func FormatDouble(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	return strconv.FormatFloat(v, 'g', -1, 64)
}
