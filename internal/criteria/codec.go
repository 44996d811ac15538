package criteria

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// The criteria blob hides inside a collection's overview text behind an
// HTML-comment style marker so media server UIs show only the surrounding
// human-authored text. The payload is a single JSON object; the markers are
// the only framing, so humans can edit the rest of the overview freely.
const (
	markerStart = "<!-- SYNC_CRITERIA:"
	markerEnd   = ":END_CRITERIA -->"
)

type blob struct {
	Version int `json:"version"`
	Criteria
}

// Encode serializes a criteria into its overview blob form. The criteria is
// normalized first so Decode(Encode(c)) equals the normalized c.
func Encode(c Criteria) (string, error) {
	c.Normalize()
	if err := c.Validate(); err != nil {
		return "", err
	}
	payload, err := json.Marshal(blob{Version: Version, Criteria: c})
	if err != nil {
		return "", fmt.Errorf("encode criteria: %w", err)
	}
	return markerStart + string(payload) + markerEnd, nil
}

// Decode extracts and parses the criteria blob from overview text.
// Text without a marker yields (nil, nil): the collection simply has no
// sync rules. A marker with a malformed payload yields a *ParseError.
func Decode(text string) (*Criteria, error) {
	start := strings.Index(text, markerStart)
	if start < 0 {
		return nil, nil
	}
	rest := text[start+len(markerStart):]
	end := strings.Index(rest, markerEnd)
	if end < 0 {
		return nil, &ParseError{Err: errors.New("unterminated criteria marker")}
	}
	payload := rest[:end]

	var b blob
	dec := json.NewDecoder(bytes.NewReader([]byte(payload)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		return nil, &ParseError{Field: fieldFromJSONError(err), Err: err}
	}
	if b.Version != Version {
		return nil, &ParseError{Field: "version", Err: fmt.Errorf("%w: unsupported version %d", ErrInvalidValue, b.Version)}
	}

	c := b.Criteria
	c.Normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Embed writes the criteria blob into overview text, replacing any existing
// blob and otherwise appending after the human-authored portion. The
// surrounding text survives untouched.
func Embed(text string, c Criteria) (string, error) {
	encoded, err := Encode(c)
	if err != nil {
		return "", err
	}
	remainder := strings.TrimRight(Strip(text), "\n ")
	if remainder == "" {
		return encoded, nil
	}
	return remainder + "\n\n" + encoded, nil
}

// Strip removes the criteria blob from overview text for display.
func Strip(text string) string {
	for {
		start := strings.Index(text, markerStart)
		if start < 0 {
			return strings.TrimSpace(text)
		}
		rest := text[start+len(markerStart):]
		end := strings.Index(rest, markerEnd)
		if end < 0 {
			// Unterminated marker: keep the text as-is rather than
			// discarding the tail.
			return strings.TrimSpace(text)
		}
		text = text[:start] + rest[end+len(markerEnd):]
	}
}

func fieldFromJSONError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return typeErr.Field
	}
	msg := err.Error()
	const unknown = `unknown field "`
	if idx := strings.Index(msg, unknown); idx >= 0 {
		rest := msg[idx+len(unknown):]
		if end := strings.Index(rest, `"`); end >= 0 {
			return rest[:end]
		}
	}
	return ""
}
