package dto

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Scalar keeps a JSON string or number as text so the caller decides how to
// parse it. Clients send quantities both as 5 and as "5".
type Scalar struct {
	Raw  string
	Set  bool
	Null bool
}

func (s *Scalar) UnmarshalJSON(b []byte) error {
	s.Set = true
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		s.Null = true
		s.Raw = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s.Raw = str
		return nil
	}
	s.Raw = string(b)
	return nil
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	if !s.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(s.Raw)
}

// Present reports whether a non-blank value was sent.
func (s Scalar) Present() bool {
	return s.Set && !s.Null && strings.TrimSpace(s.Raw) != ""
}

func (s Scalar) String() string {
	return strings.TrimSpace(s.Raw)
}

// NewScalar is a convenience for building requests in code.
func NewScalar(v string) Scalar {
	return Scalar{Raw: v, Set: true}
}
