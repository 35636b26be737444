package entity

// RecordKind tags which shape a StepRecord carries.
type RecordKind int

const (
	// RecordStructured carries an action label and a note.
	RecordStructured RecordKind = iota
	// RecordOpaque carries only a textual rendering of a record whose
	// action and note could not be read.
	RecordOpaque
)

func (k RecordKind) String() string {
	switch k {
	case RecordStructured:
		return "structured"
	case RecordOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// StepRecord is the canonical form of one agent transcript entry.
type StepRecord struct {
	Kind   RecordKind
	Action string
	Note   string
	Raw    string
}

func NewStepRecord(action, note string) StepRecord {
	return StepRecord{Kind: RecordStructured, Action: action, Note: note}
}

func NewOpaqueRecord(raw string) StepRecord {
	return StepRecord{Kind: RecordOpaque, Raw: raw}
}

// Transcript is the ordered list of steps an agent reports. The last record
// holds the agent's final note.
type Transcript []StepRecord

func (t Transcript) Last() (StepRecord, bool) {
	if len(t) == 0 {
		return StepRecord{}, false
	}
	return t[len(t)-1], true
}
