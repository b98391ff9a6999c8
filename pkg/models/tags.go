package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Well-known tag values. Tags other than these are free-form labels set by
// the importer (e.g. the source set name).
const (
	// TagManualSkip removes a word from the review cycle entirely.
	TagManualSkip = "skip:manual"
)

// Tags is the set of free-form labels attached to a word, stored as a
// comma-separated string. The scheduling core never inspects tags directly;
// it only evaluates an exclusion predicate built from them.
type Tags []string

// ParseTags splits a comma-separated tag string.
func ParseTags(s string) Tags {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make(Tags, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// Has reports whether the tag set contains the given tag.
func (t Tags) Has(tag string) bool {
	for _, v := range t {
		if v == tag {
			return true
		}
	}
	return false
}

// ManualSkip reports whether the word has been manually removed from review.
func (t Tags) ManualSkip() bool {
	return t.Has(TagManualSkip)
}

// With returns a copy of the tag set with tag added (no duplicates).
func (t Tags) With(tag string) Tags {
	if t.Has(tag) {
		return t
	}
	out := make(Tags, len(t), len(t)+1)
	copy(out, t)
	return append(out, tag)
}

func (t Tags) String() string {
	return strings.Join(t, ",")
}

// Value implements driver.Valuer so Tags round-trips through sqlx.
func (t Tags) Value() (driver.Value, error) {
	if len(t) == 0 {
		return "", nil
	}
	return t.String(), nil
}

// Scan implements sql.Scanner.
func (t *Tags) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = nil
	case string:
		*t = ParseTags(v)
	case []byte:
		*t = ParseTags(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Tags", src)
	}
	return nil
}
