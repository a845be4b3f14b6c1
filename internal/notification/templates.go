package notification

import (
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

var funcs = template.FuncMap{
	"orDefault": func(v, def string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	},
	"fee": func(v int64) string {
		if v <= 0 {
			return "Free"
		}
		return printer.Sprintf("%d KRW", v)
	},
	"count": func(v int) string { return printer.Sprintf("%d", v) },
}

type tmpl struct {
	subject *template.Template
	body    *template.Template
}

func mustTmpl(subject, body string) tmpl {
	return tmpl{
		subject: template.Must(template.New("subject").Funcs(funcs).Parse(subject)),
		body:    template.Must(template.New("body").Funcs(funcs).Parse(strings.TrimSpace(body))),
	}
}

var templates = map[Kind]tmpl{
	KindEventApproved: mustTmpl(`Event approved: {{.EventTitle}}`, `
Hello {{.RecipientName}},

The event you proposed has been approved.

Event details:
- Title: {{.EventTitle}}
- Date: {{orDefault .EventDate "To be decided"}}
- Time: {{orDefault .EventTimeRange "To be decided"}}

Participants can now register for this event.

Thank you.
`),
	KindRegistrationConfirmed: mustTmpl(`Registration complete: {{.EventTitle}}`, `
Hello {{.RecipientName}},

Your registration is complete.

Registration details:
- Event: {{.EventTitle}}
- Date: {{orDefault .EventDate "To be decided"}}
- Time: {{orDefault .EventTimeRange "To be decided"}}
- Fee: {{fee .Fee}}

See you at the event!
`),
	KindEventConfirmed: mustTmpl(`Event confirmed: {{.EventTitle}}`, `
Hello {{.RecipientName}},

The event you registered for reached its minimum number of participants and is now confirmed!

Confirmed event:
- Event: {{.EventTitle}}
- Date: {{orDefault .EventDate "To be decided"}}
- Time: {{orDefault .EventTimeRange "To be decided"}}
- Fee: {{fee .Fee}}
- Current participants: {{count .ParticipantCount}}

See you at the event!
`),
	KindPasswordReset: mustTmpl(`Password reset request`, `
Hello,

We received a request to reset your password.
Open the link below to choose a new password:

{{.ResetLink}}

This link is valid for one hour.
If you did not request a reset, you can ignore this email.
`),
	KindPasswordChanged: mustTmpl(`Your password was changed`, `
Hello {{.RecipientName}},

Your password was changed successfully.

Changed at: {{.ChangedAt}}

If you did not make this change, contact support immediately.
`),
	KindAnnouncement: mustTmpl(`[{{.ServiceName}}] {{.EventTitle}} - {{.Subject}}`, `
Hello {{.RecipientName}},

There is a new announcement for {{.EventTitle}}.
----------------------------------------
{{.Content}}
----------------------------------------
Event: {{orDefault .EventDate "To be decided"}} {{.EventTimeRange}}
Details: {{.EventURL}}
`),
}

type renderData struct {
	Data
	ServiceName string
}

// Render produces the plain-text subject and body for msg.
func Render(msg Message, serviceName string) (subject, body string, err error) {
	t, ok := templates[msg.Kind]
	if !ok {
		return "", "", fmt.Errorf("unknown notification kind %q", msg.Kind)
	}
	rd := renderData{Data: msg.Data, ServiceName: serviceName}
	var sb, bb strings.Builder
	if err := t.subject.Execute(&sb, rd); err != nil {
		return "", "", fmt.Errorf("render subject: %w", err)
	}
	if err := t.body.Execute(&bb, rd); err != nil {
		return "", "", fmt.Errorf("render body: %w", err)
	}
	return sb.String(), bb.String(), nil
}
