package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is a single form entry: a locator key and the value to put there.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Fields keeps form entries in the order they must be filled.
//
// It decodes from a JSON object, keeping the order keys appear in the
// document, or from a list of {"key", "value"} objects. A repeated key keeps
// its first position and takes the last value.
type Fields []Field

func NewFields(pairs ...string) Fields {
	if len(pairs)%2 != 0 {
		panic("entity.NewFields: odd number of arguments")
	}
	f := make(Fields, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		f = f.Set(pairs[i], pairs[i+1])
	}
	return f
}

// Set returns f with key set to value, appending the key if it is new.
func (f Fields) Set(key, value string) Fields {
	for i := range f {
		if f[i].Key == key {
			f[i].Value = value
			return f
		}
	}
	return append(f, Field{Key: key, Value: value})
}

func (f Fields) Get(key string) (string, bool) {
	for _, field := range f {
		if field.Key == key {
			return field.Value, true
		}
	}
	return "", false
}

func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for _, field := range f {
		keys = append(keys, field.Key)
	}
	return keys
}

func (f *Fields) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = nil
		return nil
	}

	switch data[0] {
	case '{':
		return f.unmarshalObject(data)
	case '[':
		var list []Field
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("decode fields list: %w", err)
		}
		var result Fields
		for _, field := range list {
			result = result.Set(field.Key, field.Value)
		}
		*f = result
		return nil
	default:
		return fmt.Errorf("fields must be an object or a list of {key, value}, got %q", truncateForError(data))
	}
}

func (f *Fields) unmarshalObject(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}

	result := Fields{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode fields: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("decode fields: unexpected key token %v", tok)
		}

		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("field %q: value must be a string: %w", key, err)
		}
		result = result.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decode fields: %w", err)
	}

	*f = result
	return nil
}

// MarshalJSON writes the fields as a JSON object in fill order.
func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(field.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func truncateForError(data []byte) string {
	if len(data) > 40 {
		return string(data[:40]) + "..."
	}
	return string(data)
}
