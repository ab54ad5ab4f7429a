package persona

import (
	"encoding/json"
	"testing"
)

func TestWellFormedRequiresArrays(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want bool
	}{
		{"all present", `{"values":[],"goals":[],"hobbies":[]}`, true},
		{"populated", `{"values":["a"],"goals":["b"],"hobbies":["c"]}`, true},
		{"missing hobbies", `{"values":[],"goals":[]}`, false},
		{"missing all", `{"name":"Ada"}`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var doc Document
			if err := json.Unmarshal([]byte(tc.raw), &doc); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if got := doc.WellFormed(); got != tc.want {
				t.Errorf("WellFormed() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestErrorRecordNotWellFormed(t *testing.T) {
	doc := ErrorRecord("Could not parse persona", "garbage output")
	if doc.WellFormed() {
		t.Error("error record must not be well formed")
	}
	if doc.Error == "" || doc.Raw != "garbage output" {
		t.Errorf("record = %+v", doc)
	}
}

func TestSchemaJSONIsValid(t *testing.T) {
	var schema map[string]interface{}
	if err := json.Unmarshal([]byte(SchemaJSON), &schema); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	if schema["title"] != "UserPersona" {
		t.Errorf("title = %v", schema["title"])
	}
}
