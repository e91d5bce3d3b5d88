package req

import (
	"encoding/json"
	"strings"

	"github.com/xy-planning-network/signpost"
)

// A ValidationError names a field whose value broke one of its rules.
type ValidationError struct {
	Field string `json:"field"`
	Got   any    `json:"got"`
	Rule  string `json:"rule,omitempty"`
	Param string `json:"param,omitempty"`
	Type  string `json:"type,omitempty"`
}

// rule renders Rule and Param the way they are written in a struct tag.
func (ve ValidationError) rule() string {
	if ve.Param == "" {
		return ve.Rule
	}

	return ve.Rule + "=" + ve.Param
}

// ValidationErrors lists every field of a payload that failed validation, in struct order.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, ve := range v {
		msgs = append(msgs, ve.Field+": "+ve.rule())
	}

	return "invalid " + strings.Join(msgs, ", ")
}

// Fields maps each failing field to the first rule it broke,
// the shape a template re-rendering a form reads errors from.
func (v ValidationErrors) Fields() map[string]string {
	m := make(map[string]string, len(v))
	for _, ve := range v {
		if _, ok := m[ve.Field]; !ok {
			m[ve.Field] = ve.rule()
		}
	}

	return m
}

func (v ValidationErrors) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		E []ValidationError `json:"validationErrors,omitempty"`
	}{E: v})
}

func (ValidationErrors) Unwrap() error { return signpost.ErrNotValid }
