package utils

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// FlexString accepts a JSON string, number or bool, so the same request struct
// binds from multipart forms (everything is text) and from JSON bodies.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)

	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	*f = FlexString(b)
	return nil
}

func (f FlexString) String() string {
	return strings.TrimSpace(string(f))
}

// StringList accepts either a JSON array of strings or one comma separated string.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)

	if bytes.Equal(b, []byte("null")) {
		*l = nil
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = SplitCSV(s)
		return nil
	}

	var items []string
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}

	*l = Normalize(items)
	return nil
}

// Normalize splits every element on commas, trims, and drops empties while
// keeping order. Form posts may send one comma string or repeated fields.
func Normalize(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, SplitCSV(item)...)
	}
	return out
}

func SplitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
