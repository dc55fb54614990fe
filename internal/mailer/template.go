package mailer

import (
	"fmt"
	"strings"

	"github.com/osteele/liquid"

	"github.com/gatherkit/registrar/internal/importer"
)

// confirmationSubject and confirmationHTML are the Liquid templates behind
// every import confirmation email. The registration code is the attendee's
// check-in credential, so it is rendered prominently.
const confirmationSubject = `You're registered for {{ event_name }}`

const confirmationHTML = `<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>Hi {{ name | default: "there" }},</h2>
  <p>Your registration for <strong>{{ event_name }}</strong> is confirmed.</p>
  <table style="border-collapse: collapse; margin: 16px 0;">
    <tr><td style="padding: 4px 12px 4px 0;">Ticket</td><td><strong>{{ ticket_type }}</strong></td></tr>
    <tr><td style="padding: 4px 12px 4px 0;">Registration code</td><td><strong style="font-size: 18px; letter-spacing: 2px;">{{ code }}</strong></td></tr>
  </table>
  <p>Keep this code handy. You will need it at check-in.</p>
</body>
</html>`

// templates parses the confirmation templates once and renders them per
// attendee.
type templates struct {
	engine  *liquid.Engine
	subject *liquid.Template
	html    *liquid.Template
}

func newTemplates() (*templates, error) {
	engine := liquid.NewEngine()
	engine.RegisterFilter("default", func(value interface{}, fallback string) interface{} {
		if value == nil || strings.TrimSpace(fmt.Sprintf("%v", value)) == "" {
			return fallback
		}
		return value
	})

	subject, err := engine.ParseString(confirmationSubject)
	if err != nil {
		return nil, fmt.Errorf("parse subject template: %w", err)
	}
	html, err := engine.ParseString(confirmationHTML)
	if err != nil {
		return nil, fmt.Errorf("parse body template: %w", err)
	}
	return &templates{engine: engine, subject: subject, html: html}, nil
}

// renderConfirmation produces the subject and HTML body for one attendee.
func (t *templates) renderConfirmation(c importer.Confirmation) (string, string, error) {
	bindings := map[string]interface{}{
		"name":        c.Name,
		"email":       c.Email,
		"event_name":  c.EventName,
		"ticket_type": c.TicketType,
		"code":        c.Code,
	}

	subject, err := t.subject.RenderString(bindings)
	if err != nil {
		return "", "", fmt.Errorf("render subject: %w", err)
	}
	body, err := t.html.RenderString(bindings)
	if err != nil {
		return "", "", fmt.Errorf("render body: %w", err)
	}
	return subject, body, nil
}
