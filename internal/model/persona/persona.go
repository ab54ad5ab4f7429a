package persona

// Document is the structured end-of-session summary extracted from a
// full transcript. When extraction cannot recover valid JSON the
// document degrades to an error record carrying the raw model output;
// that is a valid terminal state, not a failure.
type Document struct {
	Name           string   `json:"name,omitempty"`
	Age            int      `json:"age,omitempty"`
	Values         []string `json:"values"`
	Goals          []string `json:"goals"`
	Hobbies        []string `json:"hobbies"`
	Lifestyle      string   `json:"lifestyle,omitempty"`
	Relationships  string   `json:"relationships,omitempty"`
	Struggles      []string `json:"struggles,omitempty"`
	Dreams         []string `json:"dreams,omitempty"`
	HumorStyle     string   `json:"humor_style,omitempty"`
	DecisionMaking string   `json:"decision_making,omitempty"`
	IdealDay       string   `json:"ideal_day,omitempty"`

	// Error/Raw are set only on the degraded error record.
	Error string `json:"error,omitempty"`
	Raw   string `json:"raw,omitempty"`
}

// WellFormed reports whether the required array fields were present in
// the extracted JSON. Empty arrays count as present; missing keys
// unmarshal to nil slices and do not.
func (d *Document) WellFormed() bool {
	if d.Error != "" {
		return false
	}
	return d.Values != nil && d.Goals != nil && d.Hobbies != nil
}

// ErrorRecord builds the degraded persona for unparsable model output.
func ErrorRecord(reason, raw string) *Document {
	return &Document{Error: reason, Raw: raw}
}

// SchemaJSON is the persona JSON schema embedded verbatim in the
// extraction prompt.
const SchemaJSON = `{
  "title": "UserPersona",
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "age": {"type": "integer"},
    "values": {"type": "array", "items": {"type": "string"}},
    "goals": {"type": "array", "items": {"type": "string"}},
    "hobbies": {"type": "array", "items": {"type": "string"}},
    "lifestyle": {"type": "string"},
    "relationships": {"type": "string"},
    "struggles": {"type": "array", "items": {"type": "string"}},
    "dreams": {"type": "array", "items": {"type": "string"}},
    "humor_style": {"type": "string"},
    "decision_making": {"type": "string"},
    "ideal_day": {"type": "string"}
  },
  "required": ["values", "goals", "hobbies"]
}`
