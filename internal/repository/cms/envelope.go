package cms

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The CMS wraps everything in a {"data": ...} envelope, but the shape inside
// is inconsistent across endpoints and versions: data may be an object or an
// array, attributes may be nested under "attributes" or flattened beside the
// id, relations come back bare, as {"id":..} or as {"data": {...}}, and some
// write paths answer with a second envelope ({"data":{"data":{...}}}).
// Everything is normalized here, at the boundary, so nothing downstream ever
// sniffs shapes.

type Envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  *Meta           `json:"meta,omitempty"`
	Error *UpstreamError  `json:"error,omitempty"`
}

type Meta struct {
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

// UpstreamError is the CMS error body. Also used for transport-level failures
// with Name "TransportError".
type UpstreamError struct {
	Status  int    `json:"status"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("cms: %s (%d): %s", e.Name, e.Status, e.Message)
}

// Entry is one normalized CMS record: numeric ID, opaque document ID, and the
// raw attribute map (flattened, never nested under "attributes").
type Entry struct {
	ID         int64
	DocumentID string
	Attributes map[string]json.RawMessage
}

// One returns the single entry of the envelope. A null body yields (nil, nil);
// an array body yields its first element, matching how filtered single-record
// lookups behave.
func (e *Envelope) One() (*Entry, error) {
	data := unwrapNested(e.Data)
	if isNull(data) {
		return nil, nil
	}
	if isArray(data) {
		entries, err := decodeEntries(data)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, nil
		}
		return &entries[0], nil
	}
	return decodeEntry(data)
}

// Many returns all entries of a collection response.
func (e *Envelope) Many() ([]Entry, error) {
	data := unwrapNested(e.Data)
	if isNull(data) {
		return nil, nil
	}
	if !isArray(data) {
		entry, err := decodeEntry(data)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return nil, nil
		}
		return []Entry{*entry}, nil
	}
	return decodeEntries(data)
}

// unwrapNested strips the occasional extra {"data": ...} layer some write
// endpoints add.
func unwrapNested(raw json.RawMessage) json.RawMessage {
	if isNull(raw) || isArray(raw) {
		return raw
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return raw
	}
	if inner, ok := probe["data"]; ok && len(probe) <= 2 {
		// {"data": ..., "meta": ...} nested envelope
		if _, hasID := probe["id"]; !hasID {
			return unwrapNested(inner)
		}
	}
	return raw
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func decodeEntries(raw json.RawMessage) ([]Entry, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("cms: malformed collection body: %w", err)
	}
	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entry, err := decodeEntry(item)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			entries = append(entries, *entry)
		}
	}
	return entries, nil
}

func decodeEntry(raw json.RawMessage) (*Entry, error) {
	if isNull(raw) {
		return nil, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("cms: malformed entry body: %w", err)
	}

	entry := &Entry{Attributes: fields}

	if rawID, ok := fields["id"]; ok {
		_ = json.Unmarshal(rawID, &entry.ID)
	}
	if rawDoc, ok := fields["documentId"]; ok {
		_ = json.Unmarshal(rawDoc, &entry.DocumentID)
	}

	// v4 shape: real fields nested under "attributes"
	if rawAttrs, ok := fields["attributes"]; ok && !isNull(rawAttrs) {
		var attrs map[string]json.RawMessage
		if err := json.Unmarshal(rawAttrs, &attrs); err == nil {
			if rawDoc, ok := attrs["documentId"]; ok && entry.DocumentID == "" {
				_ = json.Unmarshal(rawDoc, &entry.DocumentID)
			}
			entry.Attributes = attrs
		}
	}

	return entry, nil
}

// String reads a string attribute, empty when absent or differently typed.
func (e *Entry) String(key string) string {
	raw, ok := e.Attributes[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Int reads a numeric attribute, zero when absent.
func (e *Entry) Int(key string) int64 {
	raw, ok := e.Attributes[key]
	if !ok {
		return 0
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0
	}
	return n
}

// Float reads a float attribute; nil when absent.
func (e *Entry) Float(key string) *float64 {
	raw, ok := e.Attributes[key]
	if !ok || isNull(raw) {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return &f
}

// RelationID resolves a relation attribute to its numeric foreign key, coping
// with the bare-number, {"id":..} and {"data":{"id":..}} forms. Returns nil
// when the relation is absent or empty.
func (e *Entry) RelationID(key string) *int64 {
	raw, ok := e.Attributes[key]
	if !ok || isNull(raw) {
		return nil
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n
	}
	entry, err := decodeEntry(unwrapNested(raw))
	if err != nil || entry == nil || entry.ID == 0 {
		return nil
	}
	return &entry.ID
}

// RelationOne resolves a populated to-one relation or embedded component.
func (e *Entry) RelationOne(key string) (*Entry, error) {
	raw, ok := e.Attributes[key]
	if !ok || isNull(raw) {
		return nil, nil
	}
	return decodeEntry(unwrapNested(raw))
}

// RelationMany resolves a populated to-many relation, whether the CMS sends
// it as a bare array or wrapped in {"data":[...]}.
func (e *Entry) RelationMany(key string) ([]Entry, error) {
	raw, ok := e.Attributes[key]
	if !ok || isNull(raw) {
		return nil, nil
	}
	unwrapped := unwrapNested(raw)
	if !isArray(unwrapped) {
		entry, err := decodeEntry(unwrapped)
		if err != nil || entry == nil {
			return nil, err
		}
		return []Entry{*entry}, nil
	}
	return decodeEntries(unwrapped)
}
