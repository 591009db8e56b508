package validation

import (
	"html"
	"strconv"
	"strings"
	"unicode"

	"github.com/baechuer/account-service/internal/schema"
)

// Sanitize applies each declared field's sanitizers to raw and coerces the
// result to the declared type. Fields the schema does not declare are
// dropped; fields absent from raw stay absent. It never fails.
func Sanitize(s *schema.RequestSchema, raw map[string]string) Values {
	out := make(Values, len(s.Fields))
	for _, f := range s.Fields {
		rv, ok := raw[f.Name]
		if !ok {
			continue
		}
		for _, op := range f.Sanitizers {
			rv = applyOp(op, rv)
		}
		out[f.Name] = coerce(f.Type, rv)
	}
	return out
}

func applyOp(op, v string) string {
	switch op {
	case schema.OpTrim:
		return strings.TrimSpace(v)
	case schema.OpLower:
		return strings.ToLower(v)
	case schema.OpUpper:
		return strings.ToUpper(v)
	case schema.OpStripControl:
		return stripControl(v)
	case schema.OpEscapeHTML:
		return html.EscapeString(v)
	case schema.OpCollapseSpace:
		return strings.Join(strings.Fields(v), " ")
	default:
		return v
	}
}

// stripControl removes null bytes and non-printable runes, keeping newline and tab.
func stripControl(v string) string {
	var b strings.Builder
	b.Grow(len(v))
	for _, r := range v {
		if unicode.IsPrint(r) || r == '\n' || r == '\t' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func coerce(t schema.ValueType, v string) any {
	switch t {
	case schema.TypeInt:
		if i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return i
		}
	case schema.TypeBool:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "on", "yes":
			return true
		case "0", "false", "off", "no", "":
			return false
		}
	}
	return v
}
