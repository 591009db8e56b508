package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Kind names a request type.
type Kind string

const (
	KindLogin           Kind = "login"
	KindRegister        Kind = "register"
	KindAccountSettings Kind = "account-settings"
)

// ValueType is the type a field is sanitized into.
type ValueType string

const (
	TypeString ValueType = "string"
	TypeInt    ValueType = "int"
	TypeBool   ValueType = "bool"
)

// Sanitizer ops.
const (
	OpTrim          = "trim"
	OpLower         = "lower"
	OpUpper         = "upper"
	OpStripControl  = "strip_control"
	OpEscapeHTML    = "escape_html"
	OpCollapseSpace = "collapse_space"
)

var knownSanitizers = map[string]bool{
	OpTrim:          true,
	OpLower:         true,
	OpUpper:         true,
	OpStripControl:  true,
	OpEscapeHTML:    true,
	OpCollapseSpace: true,
}

const (
	DefaultRequiredMessage = "VALIDATE_REQUIRED"
	DefaultTypeMessage     = "VALIDATE_TYPE"
	DefaultRuleMessage     = "VALIDATE_INVALID"
)

// Validator is one validation op. Rule is a validator tag ("min=3", "email").
// When Field is set the rule compares against that field's sanitized value.
type Validator struct {
	Rule    string `json:"rule"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

// FieldRule is the rule set of one field.
type FieldRule struct {
	Name            string      `json:"name"`
	Type            ValueType   `json:"type,omitempty"`
	Required        bool        `json:"required,omitempty"`
	RequiredMessage string      `json:"required_message,omitempty"`
	TypeMessage     string      `json:"type_message,omitempty"`
	Sanitizers      []string    `json:"sanitizers,omitempty"`
	Validators      []Validator `json:"validators,omitempty"`
}

// Honeypot describes the hidden field a human submission carries unchanged.
type Honeypot struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// RequestSchema is immutable after Parse and safe for concurrent use.
type RequestSchema struct {
	Kind          Kind        `json:"-"`
	Honeypot      *Honeypot   `json:"honeypot,omitempty"`
	ControlFields []string    `json:"control_fields,omitempty"`
	Fields        []FieldRule `json:"fields"`

	index map[string]int
}

// Field returns the rule set for name.
func (s *RequestSchema) Field(name string) (FieldRule, bool) {
	i, ok := s.index[name]
	if !ok {
		return FieldRule{}, false
	}
	return s.Fields[i], true
}

// Has reports whether name is declared by the schema.
func (s *RequestSchema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// IsControlField reports whether name must be stripped before processing.
func (s *RequestSchema) IsControlField(name string) bool {
	for _, f := range s.ControlFields {
		if f == name {
			return true
		}
	}
	return false
}

// TagChecker rejects validator tags the validation engine cannot run.
// cross is true for rules that compare against another field.
type TagChecker func(tag string, cross bool) error

// Parse decodes and checks one schema document. check may be nil.
func Parse(kind Kind, data []byte, check TagChecker) (*RequestSchema, error) {
	var s RequestSchema
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("schema %s: %w", kind, err)
	}
	s.Kind = kind

	if s.Honeypot != nil && s.Honeypot.Field == "" {
		return nil, fmt.Errorf("schema %s: honeypot field name is empty", kind)
	}

	s.index = make(map[string]int, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		if f.Name == "" {
			return nil, fmt.Errorf("schema %s: field %d has no name", kind, i)
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("schema %s: duplicate field %q", kind, f.Name)
		}
		s.index[f.Name] = i

		switch f.Type {
		case "":
			f.Type = TypeString
		case TypeString, TypeInt, TypeBool:
		default:
			return nil, fmt.Errorf("schema %s: field %q: unknown type %q", kind, f.Name, f.Type)
		}
		if f.RequiredMessage == "" {
			f.RequiredMessage = DefaultRequiredMessage
		}
		if f.TypeMessage == "" {
			f.TypeMessage = DefaultTypeMessage
		}

		for _, op := range f.Sanitizers {
			if !knownSanitizers[op] {
				return nil, fmt.Errorf("schema %s: field %q: unknown sanitizer %q", kind, f.Name, op)
			}
		}
		for j := range f.Validators {
			v := &f.Validators[j]
			if v.Rule == "" {
				return nil, fmt.Errorf("schema %s: field %q: validator %d has no rule", kind, f.Name, j)
			}
			if v.Message == "" {
				v.Message = DefaultRuleMessage
			}
		}
	}

	// cross-field references resolve only once every field is indexed
	for _, f := range s.Fields {
		for _, v := range f.Validators {
			if v.Field != "" && !s.Has(v.Field) {
				return nil, fmt.Errorf("schema %s: field %q: rule %q references unknown field %q", kind, f.Name, v.Rule, v.Field)
			}
			if check != nil {
				if err := check(v.Rule, v.Field != ""); err != nil {
					return nil, fmt.Errorf("schema %s: field %q: %w", kind, f.Name, err)
				}
			}
		}
	}

	return &s, nil
}
