package database

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// timestampFormats are the layouts the SQLite driver may hand back for
// TIMESTAMP columns that travel through subqueries (where the declared type
// is lost and values arrive as text). PostgreSQL always returns time.Time.
var timestampFormats = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// NullTime is like sql.NullTime but also accepts textual timestamps from
// either backend.
type NullTime struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner.
func (n *NullTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		n.Time, n.Valid = time.Time{}, false
		return nil
	case time.Time:
		n.Time, n.Valid = v, true
		return nil
	case string:
		return n.parse(v)
	case []byte:
		return n.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into NullTime", src)
	}
}

// Value implements driver.Valuer.
func (n NullTime) Value() (driver.Value, error) {
	if !n.Valid {
		return nil, nil
	}
	return n.Time, nil
}

func (n *NullTime) parse(s string) error {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			n.Time, n.Valid = t, true
			return nil
		}
	}
	return fmt.Errorf("cannot parse timestamp %q", s)
}
