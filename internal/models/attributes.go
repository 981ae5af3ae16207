package models

import (
	"encoding/json"
	"strconv"
)

// NotAvailable is how an absent attribute is written at the text and JSON
// boundaries.
const NotAvailable = "NA"

// Attribute is an optional string value. The zero value is absent.
type Attribute struct {
	value string
	set   bool
}

// Some returns a present attribute.
func Some(v string) Attribute {
	return Attribute{value: v, set: true}
}

// AttributeFromText maps the boundary sentinel "NA" to an absent attribute.
func AttributeFromText(s string) Attribute {
	if s == NotAvailable {
		return Attribute{}
	}
	return Some(s)
}

func (a Attribute) Get() (string, bool) {
	return a.value, a.set
}

func (a Attribute) IsSet() bool {
	return a.set
}

// String renders absent values as "NA".
func (a Attribute) String() string {
	if !a.set {
		return NotAvailable
	}
	return a.value
}

func (a Attribute) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

func (a *Attribute) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = Attribute{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*a = AttributeFromText(s)
	return nil
}

// StructuredAttributes is the fixed six-field record parsed from a model reply.
type StructuredAttributes struct {
	Category           Attribute `json:"category"`
	IndividualCategory Attribute `json:"individual_category"`
	Gender             Attribute `json:"gender"`
	Colour             Attribute `json:"colour"`
	MoveOn             bool      `json:"move_on"`
	FollowUpMessage    Attribute `json:"follow_up_message"`
}

// Filters returns the equality constraints for every present attribute, in a
// fixed field order.
func (s StructuredAttributes) Filters() FilterSpec {
	var spec FilterSpec
	for _, f := range []struct {
		field string
		attr  Attribute
	}{
		{FieldCategory, s.Category},
		{FieldIndividualCategory, s.IndividualCategory},
		{FieldGender, s.Gender},
		{FieldColour, s.Colour},
	} {
		if v, ok := f.attr.Get(); ok {
			spec = append(spec, Constraint{Field: f.field, Value: v})
		}
	}
	return spec
}

// LogFields is the record as logger fields.
func (s StructuredAttributes) LogFields() map[string]interface{} {
	return map[string]interface{}{
		"category":            s.Category.String(),
		"individual_category": s.IndividualCategory.String(),
		"gender":              s.Gender.String(),
		"colour":              s.Colour.String(),
		"move_on":             strconv.FormatBool(s.MoveOn),
	}
}

// Constraint requires payload[Field] to equal Value.
type Constraint struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// FilterSpec is a conjunction of equality constraints. An empty spec means no
// filtering was requested.
type FilterSpec []Constraint

// Matches reports whether every constraint holds for payload. Values are
// compared as strings; a missing field never matches.
func (f FilterSpec) Matches(payload map[string]interface{}) bool {
	for _, c := range f {
		v, ok := payload[c.Field]
		if !ok {
			return false
		}
		s, ok := v.(string)
		if !ok || s != c.Value {
			return false
		}
	}
	return true
}
