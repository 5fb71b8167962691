package usecases

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"project_healthbot/internal/entities"
)

//go:embed faq_topics.yaml
var defaultTopicsYAML []byte

// FAQTopic is one row of the static topic table. Label and Query feed the
// Telegram topic menu; pressing a button sends Query back as text.
type FAQTopic struct {
	Key      string             `yaml:"key"`
	Label    string             `yaml:"label"`
	Query    string             `yaml:"query"`
	Keywords []string           `yaml:"keywords"`
	Answers  entities.Localized `yaml:"answers"`
}

type topicFile struct {
	Topics []FAQTopic `yaml:"topics"`
}

// FAQMatcher resolves free text to a stored answer. Topics are checked in
// table order and the first keyword hit wins.
type FAQMatcher struct {
	topics []FAQTopic
}

// LoadFAQTopics parses a YAML topic table.
func LoadFAQTopics(data []byte) ([]FAQTopic, error) {
	var file topicFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse faq topics: %w", err)
	}
	return file.Topics, nil
}

// NewFAQMatcher validates the table and lower-cases its keywords.
func NewFAQMatcher(topics []FAQTopic) (*FAQMatcher, error) {
	if len(topics) == 0 {
		return nil, fmt.Errorf("faq table is empty")
	}
	seen := make(map[string]bool, len(topics))
	normalized := make([]FAQTopic, 0, len(topics))
	for _, t := range topics {
		if t.Key == "" {
			return nil, fmt.Errorf("faq topic without key")
		}
		if seen[t.Key] {
			return nil, fmt.Errorf("faq topic %q defined twice", t.Key)
		}
		seen[t.Key] = true
		if t.Answers[entities.DefaultLanguage] == "" {
			return nil, fmt.Errorf("faq topic %q has no %s answer", t.Key, entities.DefaultLanguage)
		}

		keywords := make([]string, 0, len(t.Keywords))
		for _, k := range t.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				keywords = append(keywords, k)
			}
		}
		if len(keywords) == 0 {
			return nil, fmt.Errorf("faq topic %q has no keywords", t.Key)
		}
		t.Keywords = keywords
		normalized = append(normalized, t)
	}
	return &FAQMatcher{topics: normalized}, nil
}

// NewDefaultFAQMatcher builds the matcher from the embedded topic table.
func NewDefaultFAQMatcher() (*FAQMatcher, error) {
	topics, err := LoadFAQTopics(defaultTopicsYAML)
	if err != nil {
		return nil, err
	}
	return NewFAQMatcher(topics)
}

// Match returns the answer of the first topic whose keyword occurs in
// query, or entities.ErrFAQNotFound.
func (m *FAQMatcher) Match(query string, lang entities.Language) (entities.Answer, error) {
	if !lang.IsSupported() {
		lang = entities.DefaultLanguage
	}
	q := strings.ToLower(query)
	for _, t := range m.topics {
		if containsAny(q, t.Keywords) {
			return entities.Answer{
				Text:     t.Answers.In(lang),
				Source:   entities.SourceFAQ,
				Language: lang,
			}, nil
		}
	}
	return entities.Answer{}, entities.ErrFAQNotFound
}

// Topics returns a copy of the table in priority order.
func (m *FAQMatcher) Topics() []FAQTopic {
	out := make([]FAQTopic, len(m.topics))
	copy(out, m.topics)
	return out
}
