package config

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// QuestionRule is a user-supplied screening answer, checked before the
// built-in tables. Any keyword found in the question label selects it.
// Selector overrides the input a text rule types into.
type QuestionRule struct {
	Name     string   `yaml:"name"`
	Kind     string   `yaml:"kind"`
	Any      []string `yaml:"any"`
	Answer   string   `yaml:"answer"`
	Selector string   `yaml:"selector"`
}

type questionRulesFile struct {
	Rules []QuestionRule `yaml:"rules"`
}

// LoadQuestionRules reads a YAML rules file. An empty path yields no rules.
func LoadQuestionRules(path string) ([]QuestionRule, error) {
	if path == "" {
		return nil, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read question rules %s", path)
	}

	var f questionRulesFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, errors.Wrapf(err, "parse question rules %s", path)
	}

	for i := range f.Rules {
		r := &f.Rules[i]
		r.Kind = strings.ToLower(strings.TrimSpace(r.Kind))
		if r.Kind == "" {
			r.Kind = "text"
		}
		if r.Kind != "text" && r.Kind != "choice" {
			return nil, errors.Newf("rule %d (%s): kind must be text or choice, got %q", i+1, r.Name, r.Kind)
		}
		r.Selector = strings.TrimSpace(r.Selector)
		if r.Selector != "" && r.Kind != "text" {
			return nil, errors.Newf("rule %d (%s): selector applies to text rules only", i+1, r.Name)
		}
		if len(r.Any) == 0 {
			return nil, errors.Newf("rule %d (%s): at least one keyword is required", i+1, r.Name)
		}
		for j, kw := range r.Any {
			r.Any[j] = strings.ToLower(strings.TrimSpace(kw))
		}
		if r.Name == "" {
			r.Name = r.Any[0]
		}
	}
	return f.Rules, nil
}
