package customer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
)

const idField = "id"

// Customer is a customer record as exchanged with the backend. Only ID is
// interpreted; every other field is carried in Attributes untouched.
type Customer struct {
	ID         int64
	Attributes map[string]any
}

func New(id int64, attrs map[string]any) Customer {
	return Customer{ID: id, Attributes: cloneAttributes(attrs)}
}

// HasID reports whether the backend has assigned an identifier.
func (c Customer) HasID() bool {
	return c.ID != 0
}

// Clone returns a copy that shares no map or slice with c, nested JSON
// objects and arrays included.
func (c Customer) Clone() Customer {
	return Customer{ID: c.ID, Attributes: cloneAttributes(c.Attributes)}
}

func cloneAttributes(attrs map[string]any) map[string]any {
	if attrs == nil {
		return nil
	}
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneAttributes(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

// Merge applies changes on top of c. Attributes present in changes win;
// the identifier of c is kept.
func (c Customer) Merge(changes Customer) Customer {
	merged := make(map[string]any, len(c.Attributes)+len(changes.Attributes))
	maps.Copy(merged, c.Attributes)
	maps.Copy(merged, changes.Attributes)
	return Customer{ID: c.ID, Attributes: merged}
}

// Attr returns a single attribute.
func (c Customer) Attr(name string) (any, bool) {
	v, ok := c.Attributes[name]
	return v, ok
}

func (c Customer) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Attributes)+1)
	maps.Copy(out, c.Attributes)
	delete(out, idField)
	if c.HasID() {
		out[idField] = c.ID
	}
	return json.Marshal(out)
}

func (c *Customer) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode customer: %w", err)
	}

	var id int64
	if v, ok := raw[idField]; ok && v != nil {
		parsed, err := parseID(v)
		if err != nil {
			return err
		}
		id = parsed
	}
	delete(raw, idField)
	if raw == nil {
		raw = map[string]any{}
	}

	c.ID = id
	c.Attributes = raw
	return nil
}

func parseID(v any) (int64, error) {
	switch id := v.(type) {
	case json.Number:
		n, err := id.Int64()
		if err != nil {
			return 0, fmt.Errorf("customer id %q is not an integer: %w", id.String(), err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("customer id has unsupported type %T", v)
	}
}

// EncodeAttributes serializes the attributes alone, as stored by the sandbox
// repositories. The id never appears in the output.
func EncodeAttributes(attrs map[string]any) ([]byte, error) {
	out := make(map[string]any, len(attrs))
	maps.Copy(out, attrs)
	delete(out, idField)
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode customer attributes: %w", err)
	}
	return data, nil
}

// DecodeAttributes is the inverse of EncodeAttributes. Numbers decode as
// json.Number so integers survive unchanged.
func DecodeAttributes(data []byte) (map[string]any, error) {
	attrs := map[string]any{}
	if len(bytes.TrimSpace(data)) == 0 {
		return attrs, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&attrs); err != nil {
		return nil, fmt.Errorf("decode customer attributes: %w", err)
	}
	if attrs == nil {
		attrs = map[string]any{}
	}
	delete(attrs, idField)
	return attrs, nil
}
