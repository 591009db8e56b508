package domain

// FieldError is one violated rule on one field.
type FieldError struct {
	Field string
	Rule  string
	Code  string
}

// FieldErrorSet keeps violations in schema field order, then rule order.
// Several violations on the same field are kept as separate entries.
type FieldErrorSet []FieldError

func (s *FieldErrorSet) Add(field, rule, code string) {
	*s = append(*s, FieldError{Field: field, Rule: rule, Code: code})
}

func (s FieldErrorSet) Empty() bool { return len(s) == 0 }

// ForField returns the violations recorded for field.
func (s FieldErrorSet) ForField(field string) []FieldError {
	var out []FieldError
	for _, fe := range s {
		if fe.Field == field {
			out = append(out, fe)
		}
	}
	return out
}
