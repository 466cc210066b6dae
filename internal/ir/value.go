package ir

import (
	"fmt"
	"time"
)

// Kind names the variant held by an IRValue.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindDateTime
	KindDocument
	KindArray
)

var kindNames = [...]string{
	KindNull:     "null",
	KindString:   "string",
	KindNumber:   "number",
	KindBool:     "bool",
	KindDateTime: "datetime",
	KindDocument: "document",
	KindArray:    "array",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// IRValue is a sealed interface over the value shapes a schema-less record can
// hold. Only IRNull, IRString, IRInt, IRFloat, IRBool, IRDateTime, IRDocument
// and IRArray implement it.
type IRValue interface {
	irValue() // Sealed - only these types implement it
	Kind() Kind
}

// IRNull is the null marker. A field that does not exist resolves to IRNull
// as well as a field explicitly stored as null.
type IRNull struct{}

func (IRNull) irValue()   {}
func (IRNull) Kind() Kind { return KindNull }

// IRString represents a string value.
type IRString string

func (IRString) irValue()   {}
func (IRString) Kind() Kind { return KindString }

// IRInt represents an integral number. Stores holding int32 or int64 values
// both surface as IRInt.
type IRInt int64

func (IRInt) irValue()   {}
func (IRInt) Kind() Kind { return KindNumber }

// IRFloat represents a floating point number.
type IRFloat float64

func (IRFloat) irValue()   {}
func (IRFloat) Kind() Kind { return KindNumber }

// IRBool represents a boolean value.
type IRBool bool

func (IRBool) irValue()   {}
func (IRBool) Kind() Kind { return KindBool }

// IRDateTime represents an instant. Values are kept in UTC with millisecond
// precision, which is what document stores persist.
type IRDateTime time.Time

func (IRDateTime) irValue()   {}
func (IRDateTime) Kind() Kind { return KindDateTime }

// Time returns the instant as a time.Time.
func (d IRDateTime) Time() time.Time {
	return time.Time(d)
}

// IRField is one key/value pair of an IRDocument.
type IRField struct {
	Key   string
	Value IRValue
}

// IRDocument represents a nested document. Unlike a map it preserves the
// store's key order, which wildcard output depends on.
type IRDocument []IRField

func (IRDocument) irValue()   {}
func (IRDocument) Kind() Kind { return KindDocument }

// Keys returns the document keys in stored order.
func (d IRDocument) Keys() []string {
	keys := make([]string, len(d))
	for i, f := range d {
		keys[i] = f.Key
	}
	return keys
}

// Get returns the value stored under key. The first occurrence wins when a
// document carries a duplicated key.
func (d IRDocument) Get(key string) (IRValue, bool) {
	for _, f := range d {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// IRArray represents an ordered list of values.
type IRArray []IRValue

func (IRArray) irValue()   {}
func (IRArray) Kind() Kind { return KindArray }

// NewIRDateTime truncates t to milliseconds and converts it to UTC.
func NewIRDateTime(t time.Time) IRDateTime {
	return IRDateTime(t.UTC().Truncate(time.Millisecond))
}

// D is a shorthand for building an IRDocument from fields.
// Example: D(F("name", IRString("cart")), F("count", IRInt(5)))
func D(fields ...IRField) IRDocument {
	return IRDocument(fields)
}

// F is a shorthand for IRField.
func F(key string, value IRValue) IRField {
	return IRField{Key: key, Value: value}
}

// IsNull reports whether v is the null marker. A nil interface counts as null.
func IsNull(v IRValue) bool {
	if v == nil {
		return true
	}
	_, ok := v.(IRNull)
	return ok
}
