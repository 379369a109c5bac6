package notify

import (
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/domainping/domainping/internal/core"
)

// Content is the rendered subject and body for one notification.
type Content struct {
	Subject string
	Body    string
}

type messageData struct {
	DomainName     string
	ExpirationDate string
	DaysLeft       int
	Registrar      string
	RenewalCost    string
	Notes          string
}

var emailTemplate = htmltemplate.Must(htmltemplate.New("email").Parse(`<html>
<body style="font-family: sans-serif; color: #333;">
  <h2>Domain renewal alert: {{.DomainName}}</h2>
  {{if le .DaysLeft 0}}
  <p><strong>EXPIRED:</strong> this domain has expired.</p>
  {{else if le .DaysLeft 7}}
  <p><strong>CRITICAL:</strong> this domain expires in {{.DaysLeft}} day(s).</p>
  {{else}}
  <p><strong>Reminder:</strong> this domain expires in {{.DaysLeft}} day(s).</p>
  {{end}}
  <ul>
    <li>Domain: {{.DomainName}}</li>
    <li>Expiration date: {{.ExpirationDate}}</li>
    {{if .Registrar}}<li>Registrar: {{.Registrar}}</li>{{end}}
    {{if .RenewalCost}}<li>Estimated renewal cost: {{.RenewalCost}}</li>{{end}}
  </ul>
  {{if .Notes}}<p>Notes: {{.Notes}}</p>{{end}}
  <p>Renew the domain with your registrar, then update its expiration date here.</p>
</body>
</html>`))

var smsTemplate = texttemplate.Must(texttemplate.New("sms").Parse(
	`Domain alert: {{.DomainName}} expires in {{.DaysLeft}} day(s) on {{.ExpirationDate}}. Renew now to avoid losing it.`))

var desktopTemplate = texttemplate.Must(texttemplate.New("desktop").Parse(
	`Domain {{.DomainName}} expires in {{.DaysLeft}} day(s).`))

// Render produces the channel-appropriate subject and body for a
// reminder firing daysLeft days before the domain expires.
func Render(ch core.Channel, d *core.Domain, daysLeft int) (Content, error) {
	data := messageData{
		DomainName: d.Name,
		DaysLeft:   daysLeft,
	}
	if d.Registrar != nil {
		data.Registrar = *d.Registrar
	}
	if d.RenewalCost != nil {
		data.RenewalCost = fmt.Sprintf("$%.2f", *d.RenewalCost)
	}
	if d.Notes != nil {
		data.Notes = *d.Notes
	}

	subject := fmt.Sprintf("Domain renewal alert: %s expires in %d day(s)", d.Name, daysLeft)

	var body strings.Builder
	var err error
	switch ch {
	case core.ChannelEmail:
		data.ExpirationDate = d.ExpirationDate.Format("January 2, 2006")
		err = emailTemplate.Execute(&body, data)
	case core.ChannelSMS:
		data.ExpirationDate = d.ExpirationDate.Format("01/02/2006")
		err = smsTemplate.Execute(&body, data)
	case core.ChannelDesktop:
		data.ExpirationDate = d.ExpirationDate.Format("January 2, 2006")
		err = desktopTemplate.Execute(&body, data)
	default:
		err = fmt.Errorf("unknown channel %q", ch)
	}
	if err != nil {
		return Content{}, err
	}

	return Content{Subject: subject, Body: body.String()}, nil
}
