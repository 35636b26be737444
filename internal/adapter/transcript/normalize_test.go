package transcript

import (
	"encoding/json"
	"testing"

	"formfill-agent/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type historyItem struct {
	action string
	note   string
}

func (h historyItem) Action() string { return h.action }
func (h historyItem) Note() string   { return h.note }

type pointerStep struct {
	action string
	note   string
}

func (p *pointerStep) Action() string { return p.action }
func (p *pointerStep) Note() string   { return p.note }

type brokenStep struct{ ID int }

func (brokenStep) Action() string { panic("history entry is gone") }
func (brokenStep) Note() string   { return "" }

type brokenJSON struct{ ID int }

func (brokenJSON) MarshalJSON() ([]byte, error) { panic("encoder exploded") }

type taggedStep struct {
	Action string `json:"action"`
	Note   string `json:"note"`
}

type untaggedStep struct {
	Action string
	Note   string
}

type numericNote struct {
	Action string `json:"action"`
	Note   int    `json:"note"`
}

func TestNormalizeRecord(t *testing.T) {
	tests := []struct {
		name   string
		record any
		want   entity.StepRecord
	}{
		{
			name:   "canonical record passes through",
			record: entity.NewStepRecord("click", "clicked submit"),
			want:   entity.NewStepRecord("click", "clicked submit"),
		},
		{
			name:   "method accessors",
			record: historyItem{action: "fill", note: "typed email"},
			want:   entity.NewStepRecord("fill", "typed email"),
		},
		{
			name:   "map with string values",
			record: map[string]any{"action": "navigate", "note": "opened page"},
			want:   entity.NewStepRecord("navigate", "opened page"),
		},
		{
			name:   "map[string]string",
			record: map[string]string{"note": "only a note"},
			want:   entity.NewStepRecord("", "only a note"),
		},
		{
			name:   "tagged struct",
			record: taggedStep{Action: "scroll", Note: "down"},
			want:   entity.NewStepRecord("scroll", "down"),
		},
		{
			name:   "untagged struct",
			record: untaggedStep{Action: "wait", Note: "settled"},
			want:   entity.NewStepRecord("wait", "settled"),
		},
		{
			name:   "map without known keys is structured and empty",
			record: map[string]any{"foo": "bar"},
			want:   entity.NewStepRecord("", ""),
		},
		{
			name:   "non-string note is opaque",
			record: numericNote{Action: "click", Note: 5},
			want:   entity.NewOpaqueRecord("{click 5}"),
		},
		{
			name:   "plain string is opaque",
			record: "agent said hello",
			want:   entity.NewOpaqueRecord("agent said hello"),
		},
		{
			name:   "number is opaque",
			record: 42,
			want:   entity.NewOpaqueRecord("42"),
		},
		{
			name:   "nil is opaque",
			record: nil,
			want:   entity.NewOpaqueRecord("<nil>"),
		},
		{
			name:   "raw JSON object",
			record: json.RawMessage(`{"action": "finish", "note": "PASS"}`),
			want:   entity.NewStepRecord("finish", "PASS"),
		},
		{
			name:   "invalid raw JSON is opaque",
			record: json.RawMessage(`{not json`),
			want:   entity.NewOpaqueRecord(`{not json`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeRecord(tt.record))
		})
	}
}

func TestNormalizeRecord_UnmarshalableValueFallsBackToText(t *testing.T) {
	ch := make(chan int)

	rec := NormalizeRecord(ch)

	assert.Equal(t, entity.RecordOpaque, rec.Kind)
	assert.NotEmpty(t, rec.Raw)
}

func TestNormalizeRecord_PanickingRecordsFallBackToText(t *testing.T) {
	var nilStep *pointerStep

	tests := []struct {
		name   string
		record any
		want   entity.StepRecord
	}{
		{
			name:   "nil pointer with accessors",
			record: nilStep,
			want:   entity.NewOpaqueRecord("<nil>"),
		},
		{
			name:   "accessor panics",
			record: brokenStep{ID: 7},
			want:   entity.NewOpaqueRecord("{7}"),
		},
		{
			name:   "json encoder panics",
			record: brokenJSON{ID: 3},
			want:   entity.NewOpaqueRecord("{3}"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec entity.StepRecord
			require.NotPanics(t, func() { rec = NormalizeRecord(tt.record) })
			assert.Equal(t, tt.want, rec)
		})
	}
}

func TestNormalize_KeepsOrder(t *testing.T) {
	got := Normalize([]any{
		map[string]any{"action": "navigate", "note": "a"},
		"free text",
		historyItem{action: "finish", note: "DONE"},
	})

	require.Len(t, got, 3)
	assert.Equal(t, "navigate", got[0].Action)
	assert.Equal(t, entity.RecordOpaque, got[1].Kind)
	assert.Equal(t, "DONE", got[2].Note)
}

func TestDecode(t *testing.T) {
	data := []byte(`[
		{"action": "navigate", "note": "opened http://x/login"},
		"plain text step",
		{"action": "fill", "note": 12},
		{"note": "Result: FAIL - field not found"}
	]`)

	got, err := Decode(data)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, entity.NewStepRecord("navigate", "opened http://x/login"), got[0])
	assert.Equal(t, entity.NewOpaqueRecord("plain text step"), got[1])
	assert.Equal(t, entity.RecordOpaque, got[2].Kind)
	assert.Contains(t, got[2].Raw, `"note": 12`)
	assert.Equal(t, entity.NewStepRecord("", "Result: FAIL - field not found"), got[3])
}

func TestDecode_RejectsNonArray(t *testing.T) {
	_, err := Decode([]byte(`{"action": "x"}`))
	assert.Error(t, err)
}
