package account

import (
	"context"

	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/schema"
	"github.com/baechuer/account-service/internal/validation"
)

// gate accumulates validator and business-rule failures so every reason
// is reported together at one checkpoint.
type gate struct {
	ms     *Messages
	fields domain.FieldErrorSet
	causes []*domain.Error
}

func newGate(ms *Messages) *gate { return &gate{ms: ms} }

// reject records a validator outcome's field violations.
func (g *gate) reject(fs domain.FieldErrorSet) {
	for _, fe := range fs {
		g.fields = append(g.fields, fe)
		g.ms.Danger(fe.Code, map[string]string{"field": fe.Field, "rule": fe.Rule})
	}
}

// fail records one business-rule failure.
func (g *gate) fail(err *domain.Error, code string, params map[string]string) {
	g.causes = append(g.causes, err)
	g.ms.Danger(code, params)
}

func (g *gate) failed() bool {
	return len(g.fields) > 0 || len(g.causes) > 0
}

// checkpoint is the single halting point of a pipeline run.
func (g *gate) checkpoint() error {
	if !g.failed() {
		return nil
	}
	if len(g.causes) == 0 {
		return domain.ErrValidationFailed(g.fields)
	}
	return domain.ErrBusinessRuleFailed(g.causes, g.fields)
}

// stripControlFields drops anti-forgery and other control fields before
// any stage sees the submission. raw is not modified.
func stripControlFields(sch *schema.RequestSchema, raw map[string]string) map[string]string {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if sch.IsControlField(k) {
			continue
		}
		out[k] = v
	}
	return out
}

// checkSpam rejects submissions whose honeypot field is missing or altered.
// The rejection never says why.
func (s *Service) checkSpam(ctx context.Context, sch *schema.RequestSchema, raw map[string]string, ms *Messages) error {
	hp := sch.Honeypot
	if hp == nil {
		return nil
	}
	if v, ok := raw[hp.Field]; ok && v == hp.Value {
		return nil
	}
	s.audit.SpamRejected(ctx, string(sch.Kind), raw)
	return fail(ms, domain.ErrSpamRejected(), domain.MsgRequestRejected, nil)
}

// sanitizeAndValidate runs the schema stages and feeds violations to g.
func (s *Service) sanitizeAndValidate(sch *schema.RequestSchema, raw map[string]string, g *gate) validation.Values {
	out := s.engine.Validate(sch, validation.Sanitize(sch, raw))
	if !out.Accepted() {
		g.reject(out.Errors)
	}
	return out.Values
}

// masterExists is the shared precondition of login and registration.
func (s *Service) masterExists(ctx context.Context) (bool, error) {
	if s.site.MasterUserID == "" {
		return false, nil
	}
	return s.users.Exists(ctx, ByID, s.site.MasterUserID)
}
