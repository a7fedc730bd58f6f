package http

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
)

var errInvalidRating = errors.New("invalid rating")

// body is a loosely-typed JSON object. Fields are read one by one so a
// wrongly-typed value degrades the way the public API documents instead of
// failing the whole decode.
type body map[string]json.RawMessage

func decodeBody(r io.Reader) body {
	var b body
	if err := json.NewDecoder(r).Decode(&b); err != nil || b == nil {
		return body{}
	}
	return b
}

func (b body) has(name string) bool {
	_, ok := b[name]
	return ok
}

func (b body) isNull(name string) bool {
	raw, ok := b[name]
	return !ok || string(raw) == "null"
}

// str returns the trimmed string value. Non-string values read as "".
func (b body) str(name string) string {
	raw, ok := b[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// optionalStr is str for fields whose absence matters.
func (b body) optionalStr(name string) *string {
	if !b.has(name) {
		return nil
	}
	s := b.str(name)
	return &s
}

// movieID accepts integral JSON numbers only.
func (b body) movieID() (int64, bool) {
	raw, ok := b["movieId"]
	if !ok {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int64(f), true
}

// rating returns nil when the field is absent or null. Numbers and numeric
// strings are accepted; anything else is errInvalidRating.
func (b body) rating() (*float64, error) {
	if b.isNull("rating") {
		return nil, nil
	}
	raw := b["rating"]

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, errInvalidRating
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, errInvalidRating
	}
	return &f, nil
}
