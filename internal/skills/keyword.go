package skills

import (
	"context"
	"strings"

	"github.com/jwillemsen/baanradar/internal/model"
)

// Ensure KeywordMatcher implements model.SkillMatcher.
var _ model.SkillMatcher = (*KeywordMatcher)(nil)

// KeywordMatcher matches the curated skill catalog against posting text with
// case-insensitive substring search. The default matcher; needs no network.
type KeywordMatcher struct {
	catalog []string
}

// NewKeywordMatcher returns a matcher over the given skill catalog.
func NewKeywordMatcher(catalog []string) *KeywordMatcher {
	return &KeywordMatcher{catalog: catalog}
}

// Match returns every catalog skill that occurs in the text.
func (m *KeywordMatcher) Match(_ context.Context, text string) ([]model.Skill, error) {
	lower := strings.ToLower(text)

	var matched []model.Skill
	for _, skill := range m.catalog {
		if strings.Contains(lower, strings.ToLower(skill)) {
			matched = append(matched, model.Skill{Name: skill})
		}
	}
	return matched, nil
}
