package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotObject is returned when a transcript document is valid JSON but not an object.
var ErrNotObject = errors.New("transcript document is not a JSON object")

// requiredKeys must all be present for a record to be enriched.
var requiredKeys = []string{"visitor", "location", "chatDuration", "messages"}

// Visitor identifies the person who opened the chat.
type Visitor struct {
	Email string `json:"email"`
}

// Location is the geo lookup attached by the chat widget.
type Location struct {
	City string `json:"city"`
}

// Message is a single chat line. Only the text is relevant here.
type Message struct {
	Msg string `json:"msg"`
}

// Record is one exported chat transcript.
type Record struct {
	Visitor      Visitor
	Location     Location
	ChatDuration json.Number
	CreatedOn    string
	Messages     []Message

	Path    string // source file, not serialized
	present map[string]bool
}

// UnmarshalJSON decodes the known fields and remembers which top-level keys
// the document carried, so eligibility can be decided on key presence alone.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return ErrNotObject
		}
		return err
	}
	if raw == nil {
		return ErrNotObject
	}

	r.present = make(map[string]bool, len(raw))
	for k := range raw {
		r.present[k] = true
	}

	fields := []struct {
		key string
		dst any
	}{
		{"visitor", &r.Visitor},
		{"location", &r.Location},
		{"chatDuration", &r.ChatDuration},
		{"createdOn", &r.CreatedOn},
		{"messages", &r.Messages},
	}
	for _, f := range fields {
		v, ok := raw[f.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, f.dst); err != nil {
			return fmt.Errorf("field %s: %w", f.key, err)
		}
	}
	return nil
}

// Has reports whether the source document carried the given top-level key.
func (r *Record) Has(key string) bool {
	return r.present[key]
}

// Empty reports whether the source document was an empty object.
func (r *Record) Empty() bool {
	return len(r.present) == 0
}

// Eligible reports whether the record carries every key the pipeline needs.
// A key that is present with a null value still counts.
func (r *Record) Eligible() bool {
	for _, k := range requiredKeys {
		if !r.present[k] {
			return false
		}
	}
	return true
}
