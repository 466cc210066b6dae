package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// DateLayout is the layout used when an IRDateTime is written as JSON text.
// It matches the relaxed Extended JSON form document stores export.
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

// MarshalJSON implements json.Marshaler for IRDocument, keeping key order.
func (d IRDocument) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, f := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(f.Key)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", f.Key, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := MarshalIRValue(f.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", f.Key, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler for IRArray.
func (a IRArray) MarshalJSON() ([]byte, error) {
	return marshalIRArray(a)
}

// MarshalJSON implements json.Marshaler for IRNull.
func (IRNull) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// MarshalJSON implements json.Marshaler for IRDateTime as {"$date": "..."}.
func (d IRDateTime) MarshalJSON() ([]byte, error) {
	return marshalDate(time.Time(d))
}

// MarshalJSON implements json.Marshaler for IRFloat. Non-finite values use the
// Extended JSON $numberDouble wrapper since plain JSON cannot carry them.
func (f IRFloat) MarshalJSON() ([]byte, error) {
	return marshalFloat(float64(f))
}

// MarshalIRValue marshals an IRValue to JSON bytes.
// Uses type-switch dispatch so nested documents keep their key order.
func MarshalIRValue(v IRValue) ([]byte, error) {
	switch val := v.(type) {
	case nil, IRNull:
		return []byte("null"), nil
	case IRString:
		return json.Marshal(string(val))
	case IRInt:
		return []byte(strconv.FormatInt(int64(val), 10)), nil
	case IRFloat:
		return marshalFloat(float64(val))
	case IRBool:
		return json.Marshal(bool(val))
	case IRDateTime:
		return marshalDate(time.Time(val))
	case IRArray:
		return marshalIRArray(val)
	case IRDocument:
		return val.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown IRValue type: %T", v)
	}
}

// marshalIRArray marshals an IRArray to JSON bytes.
func marshalIRArray(arr IRArray) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := MarshalIRValue(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalDate(t time.Time) ([]byte, error) {
	s, err := json.Marshal(t.UTC().Format(DateLayout))
	if err != nil {
		return nil, err
	}
	return []byte(`{"$date":` + string(s) + `}`), nil
}

func marshalFloat(f float64) ([]byte, error) {
	switch {
	case math.IsNaN(f):
		return []byte(`{"$numberDouble":"NaN"}`), nil
	case math.IsInf(f, 1):
		return []byte(`{"$numberDouble":"Infinity"}`), nil
	case math.IsInf(f, -1):
		return []byte(`{"$numberDouble":"-Infinity"}`), nil
	}
	return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
}
