package validation

import "fmt"

// Values are sanitized field values keyed by field name. A value is a
// string, int64 or bool; a field whose declared type could not be produced
// keeps its string form so the validator can flag it.
type Values map[string]any

func (v Values) Has(name string) bool {
	_, ok := v[name]
	return ok
}

// String returns the value of name in string form, "" when absent.
func (v Values) String(name string) string {
	val, ok := v[name]
	if !ok {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return fmt.Sprint(val)
}

func (v Values) Int(name string) (int64, bool) {
	i, ok := v[name].(int64)
	return i, ok
}

func (v Values) Bool(name string) (bool, bool) {
	b, ok := v[name].(bool)
	return b, ok
}

func (v Values) Set(name string, val any) { v[name] = val }

func (v Values) Delete(names ...string) {
	for _, n := range names {
		delete(v, n)
	}
}

func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
