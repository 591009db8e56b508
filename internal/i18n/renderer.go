package i18n

import (
	"fmt"
	"strings"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"golang.org/x/text/language"

	"github.com/baechuer/account-service/internal/domain"
)

// Rendered is a message turned into display text for one locale.
type Rendered struct {
	Severity domain.Severity   `json:"severity"`
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Params   map[string]string `json:"params,omitempty"`
}

// Renderer translates message codes and params into text. It is safe for
// concurrent use once built.
type Renderer struct {
	uni     *ut.UniversalTranslator
	matcher language.Matcher
	bases   []string
}

func New() (*Renderer, error) {
	enT := en.New()
	frT := fr.New()
	supported := []locales.Translator{enT, frT}

	r := &Renderer{
		uni:     ut.New(enT, supported...),
		matcher: language.NewMatcher([]language.Tag{language.English, language.French}),
		bases:   []string{enT.Locale(), frT.Locale()},
	}

	for code, e := range catalog {
		if err := r.add(enT.Locale(), code, e.en); err != nil {
			return nil, err
		}
		if err := r.add(frT.Locale(), code, e.fr); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Renderer) add(locale, code, text string) error {
	t, ok := r.uni.GetTranslator(locale)
	if !ok {
		return fmt.Errorf("i18n: no translator for %q", locale)
	}
	if err := t.Add(code, text, false); err != nil {
		return fmt.Errorf("i18n: add %s/%s: %w", locale, code, err)
	}
	return nil
}

// Match picks the best supported language for the given preferences, most
// preferred first. Each preference may be a locale ("fr-FR", "fr_FR") or an
// Accept-Language header value. Unparseable preferences are skipped.
func (r *Renderer) Match(prefs ...string) string {
	var tags []language.Tag
	for _, p := range prefs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parsed, _, err := language.ParseAcceptLanguage(strings.ReplaceAll(p, "_", "-"))
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return r.bases[0]
	}
	_, idx, conf := r.matcher.Match(tags...)
	if conf == language.No {
		return r.bases[0]
	}
	return r.bases[idx]
}

// Render turns msgs into text for the best match of prefs. Unknown codes
// fall back to the code itself so nothing is silently dropped.
func (r *Renderer) Render(msgs []domain.Message, prefs ...string) []Rendered {
	t, _ := r.uni.GetTranslator(r.Match(prefs...))

	out := make([]Rendered, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, Rendered{
			Severity: m.Severity,
			Code:     m.Code,
			Message:  r.text(t, m),
			Params:   m.Params,
		})
	}
	return out
}

func (r *Renderer) text(t ut.Translator, m domain.Message) string {
	e, ok := catalog[m.Code]
	if !ok {
		return m.Code
	}
	args := make([]string, len(e.params))
	for i, name := range e.params {
		args[i] = m.Params[name]
	}
	s, err := t.T(m.Code, args...)
	if err != nil {
		return m.Code
	}
	return s
}
