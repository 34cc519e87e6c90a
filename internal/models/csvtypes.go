package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is how instants are written to ledger files.
const TimestampLayout = "2006/01/02 15:04:05"

// Timestamp is an instant stored in ledger files with second precision.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t}
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (t Timestamp) MarshalCSV() (string, error) {
	if t.IsZero() {
		return "", nil
	}
	return t.Format(TimestampLayout), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller. RFC 3339 is accepted too.
func (t *Timestamp) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := time.ParseInLocation(TimestampLayout, s, time.Local)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return err
		}
	}
	t.Time = parsed
	return nil
}

// OptionalYen is a whole-yen amount that may be absent, such as a passbook
// balance that was not printed.
type OptionalYen struct {
	Value int64
	Valid bool
}

// OptionalYenFrom converts a nullable amount.
func OptionalYenFrom(p *int64) OptionalYen {
	if p == nil {
		return OptionalYen{}
	}
	return OptionalYen{Value: *p, Valid: true}
}

// Ptr returns nil for an absent amount.
func (o OptionalYen) Ptr() *int64 {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

// MarshalCSV implements gocsv.TypeMarshaller.
func (o OptionalYen) MarshalCSV() (string, error) {
	if !o.Valid {
		return "", nil
	}
	return strconv.FormatInt(o.Value, 10), nil
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (o *OptionalYen) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*o = OptionalYen{}
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*o = OptionalYen{Value: v, Valid: true}
	return nil
}

func (o OptionalYen) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Ptr())
}

func (o *OptionalYen) UnmarshalJSON(b []byte) error {
	var p *int64
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*o = OptionalYenFrom(p)
	return nil
}
