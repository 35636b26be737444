// Package transcript turns whatever an agent reports as its history into
// entity.Transcript. Records may be entity.StepRecord values, types exposing
// Action()/Note() methods, maps, structs, or raw JSON. Anything whose action
// and note cannot be read is kept as an opaque textual record.
package transcript

import (
	"encoding/json"
	"fmt"

	"formfill-agent/internal/domain/entity"

	"github.com/ysmood/gson"
)

// ActionNoter is implemented by records that expose their fields as methods.
type ActionNoter interface {
	Action() string
	Note() string
}

var (
	actionKeys = []string{"action", "Action"}
	noteKeys   = []string{"note", "Note"}
)

func Normalize(records []any) entity.Transcript {
	out := make(entity.Transcript, 0, len(records))
	for _, r := range records {
		out = append(out, NormalizeRecord(r))
	}
	return out
}

// Decode reads a JSON array of records of any shape.
func Decode(data []byte) (entity.Transcript, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("transcript must be a JSON array: %w", err)
	}

	out := make(entity.Transcript, 0, len(raw))
	for _, r := range raw {
		out = append(out, fromJSON(string(r)))
	}
	return out, nil
}

// NormalizeRecord never panics: a record whose accessors or JSON encoding
// panic is kept as its textual form.
func NormalizeRecord(v any) (rec entity.StepRecord) {
	defer func() {
		if r := recover(); r != nil {
			rec = entity.NewOpaqueRecord(fmt.Sprint(v))
		}
	}()
	return normalizeRecord(v)
}

func normalizeRecord(v any) entity.StepRecord {
	switch r := v.(type) {
	case entity.StepRecord:
		return r
	case *entity.StepRecord:
		if r == nil {
			return entity.NewOpaqueRecord("<nil>")
		}
		return *r
	case ActionNoter:
		return entity.NewStepRecord(r.Action(), r.Note())
	case json.RawMessage:
		return fromJSON(string(r))
	case string:
		return entity.NewOpaqueRecord(r)
	case nil:
		return entity.NewOpaqueRecord("<nil>")
	}

	data, err := json.Marshal(v)
	if err != nil {
		return entity.NewOpaqueRecord(fmt.Sprint(v))
	}
	rec := fromJSON(string(data))
	if rec.Kind == entity.RecordOpaque {
		rec.Raw = fmt.Sprint(v)
	}
	return rec
}

func fromJSON(text string) entity.StepRecord {
	j := gson.NewFrom(text)

	obj, ok := j.Val().(map[string]interface{})
	if !ok {
		if s, isString := j.Val().(string); isString {
			return entity.NewOpaqueRecord(s)
		}
		return entity.NewOpaqueRecord(text)
	}

	action, ok := lookupString(obj, actionKeys)
	if !ok {
		return entity.NewOpaqueRecord(text)
	}
	note, ok := lookupString(obj, noteKeys)
	if !ok {
		return entity.NewOpaqueRecord(text)
	}
	return entity.NewStepRecord(action, note)
}

// lookupString returns the first present key's value. A missing key reads as
// empty; a present key holding a non-string value is a failed read.
func lookupString(obj map[string]interface{}, keys []string) (string, bool) {
	for _, k := range keys {
		v, present := obj[k]
		if !present || v == nil {
			continue
		}
		s, ok := v.(string)
		return s, ok
	}
	return "", true
}
