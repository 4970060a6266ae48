package command

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Rule maps a pattern over normalized text to an intent
type Rule struct {
	Intent  Intent
	Pattern *regexp.Regexp
}

// Matcher is a first-rule-wins grammar. It never scores partial matches.
type Matcher struct {
	rules []Rule
}

// DefaultRules is the es-MX grammar. Patterns run on text already lowercased
// and stripped of diacritics, so "muéstrame" is matched as "muestrame".
func DefaultRules() []Rule {
	return []Rule{
		{IntentShowIncome, regexp.MustCompile(`(mostrar?|muestra(me)?|ver|ensena(me)?)\s*(los?\s+|mis\s+)?ingresos`)},
		{IntentShowExpenses, regexp.MustCompile(`(mostrar?|muestra(me)?|ver|ensena(me)?)\s*(los?\s+|mis\s+)?(egresos|gastos)`)},
		{IntentOpenCompliance, regexp.MustCompile(`(abrir?|abre|ver|mostrar?|muestra(me)?)\s*(el\s+)?semaforo`)},
		{IntentOpenAdvisor, regexp.MustCompile(`(abrir?|abre|ver|hablar?\s*con)\s*(el\s+)?cfo\b`)},
		{IntentSwitchScenarioA, regexp.MustCompile(`escenario\s+a\b|(cambiar?|cambia|escenario|demo)\s*(a\s+)?sme\b`)},
		{IntentSwitchScenarioB, regexp.MustCompile(`escenario\s+b\b|(cambiar?|cambia|escenario|demo)\s*(a\s+)?scale`)},
		{IntentSwitchScenarioC, regexp.MustCompile(`escenario\s+c\b|(cambiar?|cambia|escenario|demo)\s*(a\s+)?despacho`)},
		{IntentSync, regexp.MustCompile(`sincroniza(r|me)?\s*(con\s+)?(el\s+)?sat\b`)},
	}
}

// NewMatcher builds a matcher over rules, in order. With no rules the
// default grammar is used.
func NewMatcher(rules ...Rule) *Matcher {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Matcher{rules: rules}
}

// Match returns the intent of the first rule matching text, or IntentUnknown
func (m *Matcher) Match(text string) Intent {
	normalized := Normalize(text)
	if normalized == "" {
		return IntentUnknown
	}
	for _, r := range m.rules {
		if r.Pattern.MatchString(normalized) {
			return r.Intent
		}
	}
	return IntentUnknown
}

var whitespace = regexp.MustCompile(`\s+`)

// Normalize lowercases, folds diacritics and collapses whitespace
func Normalize(text string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		text,
	)
	if err != nil {
		folded = text
	}
	folded = strings.ToLower(folded)
	folded = whitespace.ReplaceAllString(folded, " ")
	return strings.TrimSpace(folded)
}
