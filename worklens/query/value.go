package query

import (
	"strconv"
	"strings"
	"time"
)

// ValueKind is the type of a query literal
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueString
	ValueInt
	ValueTime
	ValueRel
)

func (k ValueKind) String() string {
	switch k {
	case ValueNull:
		return "null"
	case ValueString:
		return "string"
	case ValueInt:
		return "int"
	case ValueTime:
		return "timestamp"
	case ValueRel:
		return "relative-date"
	default:
		return "unknown"
	}
}

// Value is a typed query literal. Str always keeps the raw source
// spelling so a string-kind field can recover the original text of a
// literal that decoded to another kind.
type Value struct {
	Kind ValueKind
	Str  string
	Num  int64
	Time time.Time
	Rel  RelDate
}

func NullValue(raw string) Value         { return Value{Kind: ValueNull, Str: raw} }
func StringValue(s string) Value         { return Value{Kind: ValueString, Str: s} }
func IntValue(n int64, raw string) Value { return Value{Kind: ValueInt, Str: raw, Num: n} }
func TimeValue(t time.Time, raw string) Value {
	return Value{Kind: ValueTime, Str: raw, Time: t}
}
func RelDateValue(r RelDate, raw string) Value { return Value{Kind: ValueRel, Str: raw, Rel: r} }

// null sentinels accepted wherever a value may be absent
var nullWords = map[string]bool{
	"null":       true,
	"unassigned": true,
	"none":       true,
}

// decodeLiteral turns a raw token into an untyped literal value. String
// tokens stay strings; number tokens become ints; identifiers are
// special-cased for null sentinels and relative-date keywords before
// falling back to plain strings.
func decodeLiteral(tok Token) Value {
	switch tok.Kind {
	case TokString:
		return StringValue(tok.Str)
	case TokNumber:
		return IntValue(tok.Num, tok.Text)
	default:
		if nullWords[strings.ToLower(tok.Text)] {
			return NullValue(tok.Text)
		}
		if r, ok := ParseRelDate(tok.Text); ok {
			return RelDateValue(r, tok.Text)
		}
		return StringValue(tok.Text)
	}
}

// coerceValue converts a decoded literal to the field's declared kind.
// Null passes for every field; a mismatch is a type_mismatch parse error
// naming the field and the offending literal.
func coerceValue(v Value, f *Field, pos int) (Value, *Error) {
	if v.Kind == ValueNull {
		return v, nil
	}

	switch f.Kind {
	case KindInt:
		switch v.Kind {
		case ValueInt:
			return v, nil
		case ValueString:
			n, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 64)
			if err != nil {
				return Value{}, typeMismatchError(f, v.Str, pos)
			}
			return IntValue(n, v.Str), nil
		}

	case KindTime:
		switch v.Kind {
		case ValueTime, ValueRel:
			return v, nil
		case ValueInt:
			// integers against timestamp fields read as epoch milliseconds
			return TimeValue(time.UnixMilli(v.Num), v.Str), nil
		case ValueString:
			if t, err := time.ParseInLocation("2006-01-02", v.Str, time.Local); err == nil {
				return TimeValue(t, v.Str), nil
			}
			if t, err := time.Parse(time.RFC3339, v.Str); err == nil {
				return TimeValue(t, v.Str), nil
			}
			return Value{}, typeMismatchError(f, v.Str, pos)
		}

	case KindString, KindEnum, KindList:
		// every literal has a string form; recover the raw spelling
		return StringValue(v.Str), nil
	}

	return Value{}, typeMismatchError(f, v.Str, pos)
}
