package services

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"easyapply/browser"
	"easyapply/config"
)

// AnswerKind says how an answer is entered.
type AnswerKind string

const (
	AnswerText   AnswerKind = "text"
	AnswerChoice AnswerKind = "choice"
)

const (
	textInputSelector    = `[id^="input-q"], input[type="text"], input[type="number"]`
	defaultInputSelector = `[id^="input-q"], input[type="text"]`
)

// AnswerRule answers questions whose lower-cased label satisfies Match.
type AnswerRule struct {
	Name   string
	Match  func(question string) bool
	Kind   AnswerKind
	Answer string
	// Selector overrides the text input lookup.
	Selector string
}

func containsAny(keywords ...string) func(string) bool {
	return func(q string) bool {
		for _, kw := range keywords {
			if strings.Contains(q, kw) {
				return true
			}
		}
		return false
	}
}

func always(string) bool { return true }

// BuildAnswerRules orders the rules: extra rules first, then free-text
// keywords, then choice keywords, then the two catch-all defaults.
func BuildAnswerRules(p *config.ApplicantProfile, extra []config.QuestionRule) []AnswerRule {
	var rules []AnswerRule
	for _, r := range extra {
		rules = append(rules, AnswerRule{
			Name:     r.Name,
			Match:    containsAny(r.Any...),
			Kind:     AnswerKind(r.Kind),
			Answer:   r.Answer,
			Selector: r.Selector,
		})
	}

	text := []struct{ kw, answer string }{
		{"python experience", p.PythonExp},
		{"javascript experience", p.JavaScriptExp},
		{"java experience", p.JavaExp},
		{"aws experience", p.AWSExp},
		{"django experience", p.DjangoExp},
		{"programming experience", p.ProgrammingExp},
		{"phone", p.Phone},
		{"address", p.Address},
		{"city", p.City},
		{"salary", p.Salary},
		{"experience", p.DefaultExp},
	}
	for _, t := range text {
		rules = append(rules, AnswerRule{Name: t.kw, Match: containsAny(t.kw), Kind: AnswerText, Answer: t.answer})
	}

	choice := []struct{ kw, answer string }{
		{"authorization", p.WorkAuthorized},
		{"authorized", p.WorkAuthorized},
		{"education", p.Education},
		{"sponsorship", p.SponsorshipNeeded},
		{"commute", p.CommuteWilling},
		{"shift", p.PreferredShift},
		{"disability", p.DisabilityStatus},
		{"criminal", p.CriminalRecord},
		{"gender", p.Gender},
	}
	for _, c := range choice {
		rules = append(rules, AnswerRule{Name: c.kw, Match: containsAny(c.kw), Kind: AnswerChoice, Answer: c.answer})
	}

	return append(rules,
		AnswerRule{Name: "default text", Match: always, Kind: AnswerText, Answer: p.DefaultExp, Selector: defaultInputSelector},
		AnswerRule{Name: "default choice", Match: always, Kind: AnswerChoice, Answer: p.DefaultUnknownAnswer},
	)
}

// QuestionAnswerer fills one screening question from an ordered rule list.
type QuestionAnswerer struct {
	rules    []AnswerRule
	elements *ElementHandler
	log      *zap.SugaredLogger
}

func NewQuestionAnswerer(rules []AnswerRule, elements *ElementHandler, log *zap.SugaredLogger) *QuestionAnswerer {
	return &QuestionAnswerer{rules: rules, elements: elements, log: log}
}

// Answer applies the first rule that matches the label and whose input or
// option exists inside the question. Rules with no answer are skipped.
func (a *QuestionAnswerer) Answer(page browser.Page, question browser.Element, label string) bool {
	q := strings.ToLower(label)
	for _, r := range a.rules {
		if r.Answer == "" || !r.Match(q) {
			continue
		}

		var ok bool
		switch r.Kind {
		case AnswerChoice:
			ok = a.choose(page, question, r.Answer)
		default:
			sel := r.Selector
			if sel == "" {
				sel = textInputSelector
			}
			ok = a.fill(question, sel, r.Answer)
		}
		if ok {
			a.log.Infof("Answered %s question: %s", r.Kind, r.Name)
			return true
		}
	}
	return false
}

func (a *QuestionAnswerer) fill(question browser.Element, selector, answer string) bool {
	inputs, err := question.Query(selector)
	if err != nil {
		a.log.Debugf("Error finding answer input %s: %v", selector, err)
		return false
	}
	if len(inputs) == 0 {
		return false
	}
	return a.elements.TypeText(inputs[0], answer)
}

func (a *QuestionAnswerer) choose(page browser.Page, question browser.Element, answer string) bool {
	options, err := question.Query(ChoiceSelector(answer))
	if err != nil || len(options) == 0 {
		return false
	}
	return a.elements.Click(page, options[0])
}

// ChoiceSelector finds an option inside a question by its visible text.
func ChoiceSelector(answer string) string {
	return browser.ByXPath(fmt.Sprintf(".//*[contains(text(), %s)]", xpathLiteral(answer))).Selector()
}

func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = `"` + p + `"`
	}
	return "concat(" + strings.Join(quoted, `, '"', `) + ")"
}
