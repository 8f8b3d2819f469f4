package jobs

import (
	"bytes"
	"fmt"
	"text/template"
)

type mailTemplate struct {
	subject *template.Template
	body    *template.Template
}

var mailTemplates = map[string]mailTemplate{
	MailInterviewScheduled: mustMailTemplate(
		"Interview scheduled: {{.JobTitle}} at {{.CompanyName}}",
		`Hi {{.CandidateName}},

Your interview for {{.JobTitle}} with {{.CompanyName}} is scheduled on {{.InterviewDate}} from {{.FromTime}} to {{.ToTime}}.

A GenZip field agent will attend the interview in person. Please share your location so the agent can reach you:
{{.LocationLink}}

Regards,
{{.HRName}}
`),
	MailHRWelcome: mustMailTemplate(
		"Your GenZip HR account for {{.CompanyName}}",
		`Hi {{.Name}},

{{.CompanyName}} has created a GenZip HR account for you.

Login email: {{.Email}}
Temporary password: {{.TempPassword}}

You will be asked to choose a new password on first login:
{{.LoginLink}}
`),
	MailAgentWelcome: mustMailTemplate(
		"Welcome to GenZip, {{.Name}}",
		`Hi {{.Name}},

Your GenZipper ID is {{.AgentCode}}. Log in with your mobile number to see interviews available in {{.City}}.
`),
	MailPaymentReceived: mustMailTemplate(
		"Payment received: {{.Description}}",
		`Hi,

We received your payment of {{.Amount}} for {{.Description}}.
Credits added: {{.Credits}}

Reference: {{.Reference}}
`),
}

func mustMailTemplate(subject, body string) mailTemplate {
	return mailTemplate{
		subject: template.Must(template.New("subject").Option("missingkey=zero").Parse(subject)),
		body:    template.Must(template.New("body").Option("missingkey=zero").Parse(body)),
	}
}

// RenderMail builds the message for a queued mail payload.
func RenderMail(payload MailPayload) (*Message, error) {
	tmpl, ok := mailTemplates[payload.Template]
	if !ok {
		return nil, fmt.Errorf("unknown mail template: %s", payload.Template)
	}

	var subject, body bytes.Buffer
	if err := tmpl.subject.Execute(&subject, payload.Data); err != nil {
		return nil, err
	}
	if err := tmpl.body.Execute(&body, payload.Data); err != nil {
		return nil, err
	}

	return &Message{
		To:      payload.To,
		ToName:  payload.ToName,
		Subject: subject.String(),
		Body:    body.String(),
	}, nil
}
