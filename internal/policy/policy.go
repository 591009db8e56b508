package policy

import (
	"errors"
	"fmt"

	"github.com/baechuer/account-service/internal/domain"
)

// Mutable account fields.
const (
	FieldEmail       = "email"
	FieldLocale      = "locale"
	FieldDisplayName = "display_name"
	FieldPassword    = "password"
)

// ActionAccountSettings guards the account settings endpoint as a whole.
const ActionAccountSettings = "account_settings"

// Rule decides whether actor may act on target.
type Rule func(actor, target domain.User) bool

// Self allows an authenticated actor to act on their own account.
func Self(actor, target domain.User) bool {
	return actor.ID != "" && actor.ID == target.ID
}

// Authenticated allows any signed-in actor.
func Authenticated(actor, _ domain.User) bool {
	return actor.ID != ""
}

// Deny never allows.
func Deny(domain.User, domain.User) bool { return false }

// InGroups allows actors that belong to any of ids.
func InGroups(ids ...int64) Rule {
	return func(actor, _ domain.User) bool {
		if actor.ID == "" {
			return false
		}
		for _, id := range ids {
			if actor.InGroup(id) {
				return true
			}
		}
		return false
	}
}

func Any(rules ...Rule) Rule {
	return func(actor, target domain.User) bool {
		for _, r := range rules {
			if r(actor, target) {
				return true
			}
		}
		return false
	}
}

func All(rules ...Rule) Rule {
	return func(actor, target domain.User) bool {
		if len(rules) == 0 {
			return false
		}
		for _, r := range rules {
			if !r(actor, target) {
				return false
			}
		}
		return true
	}
}

// Table maps fields and actions to rules. Anything not registered is denied.
// Build it at startup; it is read-only afterwards and safe for concurrent use.
type Table struct {
	fields  map[string]Rule
	actions map[string]Rule
}

func NewTable() *Table {
	return &Table{
		fields:  map[string]Rule{},
		actions: map[string]Rule{},
	}
}

// Field registers the rule for changing field.
func (t *Table) Field(field string, r Rule) error {
	if field == "" || r == nil {
		return errors.New("policy: field rule needs a name and a rule")
	}
	if _, exists := t.fields[field]; exists {
		return fmt.Errorf("policy: field %q already registered", field)
	}
	t.fields[field] = r
	return nil
}

// Action registers the rule for a page-level action.
func (t *Table) Action(action string, r Rule) error {
	if action == "" || r == nil {
		return errors.New("policy: action rule needs a name and a rule")
	}
	if _, exists := t.actions[action]; exists {
		return fmt.Errorf("policy: action %q already registered", action)
	}
	t.actions[action] = r
	return nil
}

// CheckFieldAccess reports whether actor may change field on target.
func (t *Table) CheckFieldAccess(actor, target domain.User, field string) bool {
	r, ok := t.fields[field]
	if !ok {
		return false
	}
	return r(actor, target)
}

// CheckAccess reports whether actor may perform action.
func (t *Table) CheckAccess(actor domain.User, action string) bool {
	r, ok := t.actions[action]
	if !ok {
		return false
	}
	return r(actor, actor)
}

// Default builds the site policy: owners may edit the listed fields, members
// of adminGroupID may edit any account field, and any signed-in user may open
// account settings.
func Default(editable []string, adminGroupID int64) (*Table, error) {
	t := NewTable()
	admin := InGroups(adminGroupID)

	allowed := map[string]bool{}
	for _, f := range editable {
		allowed[f] = true
	}
	for _, f := range []string{FieldEmail, FieldLocale, FieldDisplayName, FieldPassword} {
		r := admin
		if allowed[f] {
			r = Any(Self, admin)
		}
		if err := t.Field(f, r); err != nil {
			return nil, err
		}
	}
	for f := range allowed {
		if _, known := t.fields[f]; !known {
			return nil, fmt.Errorf("policy: unknown editable field %q", f)
		}
	}

	if err := t.Action(ActionAccountSettings, Authenticated); err != nil {
		return nil, err
	}
	return t, nil
}
