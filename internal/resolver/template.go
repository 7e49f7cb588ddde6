package resolver

import (
	"fmt"
	"strings"
	"time"

	"github.com/pfrederiksen/parole-stats/internal/datetext"
	"github.com/pfrederiksen/parole-stats/internal/logger"
)

// TemplateResolver renders URL templates for a date and returns the first that exists
type TemplateResolver struct {
	templates []string
	style     datetext.Style
	prober    Prober
}

// NewTemplateResolver creates a resolver over templates containing DatePlaceholder
func NewTemplateResolver(templates []string, style datetext.Style, prober Prober) *TemplateResolver {
	return &TemplateResolver{
		templates: templates,
		style:     style,
		prober:    prober,
	}
}

// Render substitutes the formatted date into a template
func Render(template string, date time.Time, style datetext.Style) string {
	return strings.ReplaceAll(template, DatePlaceholder, datetext.Format(date, style))
}

// Resolve probes each rendered template in order.
// The result always holds exactly one URL.
func (r *TemplateResolver) Resolve(date time.Time) ([]string, error) {
	for _, tmpl := range r.templates {
		url := Render(tmpl, date, r.style)

		logger.Debug("probing report URL", logger.Fields{"url": url})
		if r.prober.HeadExists(url) {
			return []string{url}, nil
		}
	}

	return nil, fmt.Errorf("%w: %s (tried %d templates)", ErrURLNotFound, date.Format("2006-01-02"), len(r.templates))
}
