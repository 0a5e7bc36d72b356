package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jwillemsen/baanradar/internal/model"
)

// Ensure SlackNotifier implements model.Notifier.
var _ model.Notifier = (*SlackNotifier)(nil)

// SlackNotifier sends vacancy alerts to a Slack channel via Incoming Webhooks.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewSlackNotifier returns a notifier that posts each vacancy to Slack via webhook.
func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Notify sends each vacancy as a separate Slack message using Block Kit.
// Returns an error only if ALL messages fail. Individual failures are logged.
func (s *SlackNotifier) Notify(vacancies []model.Vacancy) error {
	if len(vacancies) == 0 {
		return nil
	}

	failures := 0
	for i, v := range vacancies {
		if i > 0 {
			time.Sleep(500 * time.Millisecond)
		}

		if err := s.sendMessage(v); err != nil {
			s.logger.Error("slack notification failed", "company", v.Company, "title", v.Title, "error", err)
			failures++
		}
	}

	sent := len(vacancies) - failures
	if failures == len(vacancies) {
		return fmt.Errorf("all %d slack notifications failed", failures)
	}
	s.logger.Info("slack notifications complete", "sent", sent, "failed", failures)
	return nil
}

func (s *SlackNotifier) sendMessage(v model.Vacancy) error {
	payload := buildPayload(v)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	resp, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := resp.Header.Get("Retry-After")
		secs, _ := strconv.Atoi(retryAfter)
		if secs <= 0 {
			secs = 1
		}
		s.logger.Warn("slack rate limited, retrying", "retry_after_secs", secs)
		time.Sleep(time.Duration(secs) * time.Second)

		resp2, err := s.httpClient.Post(s.webhookURL, "application/json", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("post to slack (retry): %w", err)
		}
		defer resp2.Body.Close()

		if resp2.StatusCode != http.StatusOK {
			return fmt.Errorf("slack returned %d on retry", resp2.StatusCode)
		}
		s.logger.Info("slack message sent", "company", v.Company, "title", v.Title, "retried", true)
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack returned %d", resp.StatusCode)
	}
	s.logger.Info("slack message sent", "company", v.Company, "title", v.Title)
	return nil
}

// Block Kit payload types.

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Fields   []slackText    `json:"fields,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style"`
}

// SendTestMessage sends a dummy vacancy notification to verify the integration works.
func SendTestMessage(n model.Notifier) error {
	now := time.Now()
	testVacancy := model.Vacancy{
		ID:       "test-001",
		Company:  "BaanRadar Test",
		Title:    "Testmelding, integratie werkt",
		Broker:   "test",
		URL:      "https://www.jobbird.com",
		PostedAt: &now,
		Location: &model.Location{Name: "Utrecht"},
	}
	return n.Notify([]model.Vacancy{testVacancy})
}

func buildPayload(v model.Vacancy) slackPayload {
	postedText := "Just detected"
	if v.PostedAt != nil {
		ams, err := time.LoadLocation("Europe/Amsterdam")
		if err == nil {
			postedText = v.PostedAt.In(ams).Format("02 Jan 2006")
		} else {
			postedText = v.PostedAt.Format("02 Jan 2006")
		}
	}

	locationText := "Onbekend"
	if v.Location != nil {
		locationText = v.Location.Name
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackText{Type: "plain_text", Text: "💼 " + v.Company + ": " + v.Title},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Company:*\n" + v.Company},
				{Type: "mrkdwn", Text: "*Location:*\n" + locationText},
			},
		},
		{
			Type: "section",
			Fields: []slackText{
				{Type: "mrkdwn", Text: "*Posted:*\n" + postedText},
				{Type: "mrkdwn", Text: "*Broker:*\n" + v.Broker},
			},
		},
	}

	var details []string
	if v.Hours != nil {
		details = append(details, fmt.Sprintf("*Hours:* %d per week", *v.Hours))
	}
	if v.Salary != "" {
		details = append(details, "*Salary:* "+v.Salary)
	}
	if len(v.Skills) > 0 {
		names := make([]string, len(v.Skills))
		for i, skill := range v.Skills {
			names[i] = skill.Name
		}
		details = append(details, "*Skills:* "+strings.Join(names, ", "))
	}
	if len(details) > 0 {
		blocks = append(blocks, slackBlock{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: strings.Join(details, "   ")},
		})
	}

	blocks = append(blocks,
		slackBlock{
			Type: "actions",
			Elements: []slackElement{
				{
					Type:  "button",
					Text:  slackText{Type: "plain_text", Text: "View Posting"},
					URL:   v.URL,
					Style: "primary",
				},
			},
		},
		slackBlock{Type: "divider"},
	)

	return slackPayload{Blocks: blocks}
}
