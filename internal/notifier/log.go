package notifier

import (
	"log/slog"

	"github.com/jwillemsen/baanradar/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes newly stored vacancies to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each vacancy via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each vacancy with company, title, broker, location, URL, and posted_at.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(vacancies []model.Vacancy) error {
	for _, v := range vacancies {
		args := []any{"company", v.Company, "title", v.Title, "broker", v.Broker, "url", v.URL}
		if v.Location != nil {
			args = append(args, "location", v.Location.Name)
		}
		if v.PostedAt != nil {
			args = append(args, "posted_at", *v.PostedAt)
		}
		n.logger.Info("new vacancy", args...)
	}
	return nil
}
