package skills

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared/constant"

	"github.com/jwillemsen/baanradar/internal/model"
)

// Ensure OpenAIMatcher implements model.SkillMatcher.
var _ model.SkillMatcher = (*OpenAIMatcher)(nil)

const skillSystemPrompt = `You extract skills from Dutch and English job postings.
You are given a fixed skill catalog and a posting text. Return ONLY valid JSON
of the form {"skills": [...]} where every element is taken verbatim from the
catalog. Include a skill only when the posting genuinely asks for it. Never
invent skills outside the catalog.`

// OpenAIMatcher asks an LLM which catalog skills a posting mentions. Unlike
// the keyword matcher it survives inflected and translated mentions
// ("Java-ontwikkelaar"), at the cost of a network call per posting.
type OpenAIMatcher struct {
	client  openai.Client
	model   string
	catalog []string
}

// NewOpenAIMatcher creates an LLM-backed matcher. baseURL is optional and
// exists for tests and proxies.
func NewOpenAIMatcher(apiKey, baseURL, modelName string, catalog []string) *OpenAIMatcher {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIMatcher{
		client:  openai.NewClient(opts...),
		model:   modelName,
		catalog: catalog,
	}
}

// Match sends the catalog and posting text to the model and keeps only
// responses that really occur in the catalog.
func (m *OpenAIMatcher) Match(ctx context.Context, text string) ([]model.Skill, error) {
	prompt := fmt.Sprintf("Catalog: %s\n\nPosting:\n%s", strings.Join(m.catalog, ", "), text)

	completion, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(skillSystemPrompt),
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModel(m.model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{
				Type: constant.JSONObject("json_object"),
			},
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return nil, fmt.Errorf("skill extraction: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, errors.New("skill extraction: empty response")
	}

	var parsed struct {
		Skills []string `json:"skills"`
	}
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &parsed); err != nil {
		return nil, fmt.Errorf("skill extraction: parse response: %w", err)
	}

	// The model must not add skills of its own; keep catalog entries only,
	// in their canonical spelling.
	canonical := make(map[string]string, len(m.catalog))
	for _, skill := range m.catalog {
		canonical[strings.ToLower(skill)] = skill
	}
	var matched []model.Skill
	seen := make(map[string]bool)
	for _, skill := range parsed.Skills {
		name, ok := canonical[strings.ToLower(skill)]
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		matched = append(matched, model.Skill{Name: name})
	}
	return matched, nil
}
