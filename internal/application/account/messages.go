package account

import "github.com/baechuer/account-service/internal/domain"

// Messages is the per-request outcome accumulator. Messages keep call order
// and are never deduplicated. Drain is the only way to read them.
// A Messages value must not be shared between requests.
type Messages struct {
	items []domain.Message
}

func NewMessages() *Messages { return &Messages{} }

func (m *Messages) Add(sev domain.Severity, code string, params map[string]string) {
	m.items = append(m.items, domain.Message{Severity: sev, Code: code, Params: params})
}

func (m *Messages) Success(code string, params map[string]string) {
	m.Add(domain.SeveritySuccess, code, params)
}

func (m *Messages) Warning(code string, params map[string]string) {
	m.Add(domain.SeverityWarning, code, params)
}

func (m *Messages) Danger(code string, params map[string]string) {
	m.Add(domain.SeverityDanger, code, params)
}

// Len reports how many messages are waiting.
func (m *Messages) Len() int { return len(m.items) }

// Drain returns every pending message and clears the accumulator.
func (m *Messages) Drain() []domain.Message {
	out := m.items
	m.items = nil
	return out
}
