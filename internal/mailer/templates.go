package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// message is a rendered HTML+plaintext pair ready to submit.
type message struct {
	Subject string
	HTML    string
	Text    string
}

// layout wraps every HTML mail in the same minimal shell. Field rows are
// built from label/value pairs so each mail kind stays a data literal.
var layout = template.Must(template.New("layout").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Helvetica, Arial, sans-serif; color: #222; max-width: 560px; margin: 0 auto;">
  <h2 style="color: #1a6b4a;">{{.Heading}}</h2>
  {{if .Intro}}<p>{{.Intro}}</p>{{end}}
  <table style="border-collapse: collapse; width: 100%;">
    {{range .Rows}}
    <tr>
      <td style="padding: 6px 12px 6px 0; color: #666; vertical-align: top; white-space: nowrap;">{{.Label}}</td>
      <td style="padding: 6px 0;">{{.Value}}</td>
    </tr>
    {{end}}
  </table>
  {{if .Outro}}<p>{{.Outro}}</p>{{end}}
  <p style="color: #999; font-size: 12px; margin-top: 32px;">Givebridge — this message was sent automatically.</p>
</body>
</html>`))

type row struct {
	Label string
	Value string
}

type mailData struct {
	Heading string
	Intro   string
	Rows    []row
	Outro   string
}

// render produces the HTML and plaintext bodies from the same data so
// the two can never drift apart.
func render(subject string, data mailData) (message, error) {
	var buf bytes.Buffer
	if err := layout.Execute(&buf, data); err != nil {
		return message{}, fmt.Errorf("mailer: render %q: %w", subject, err)
	}

	var text strings.Builder
	text.WriteString(data.Heading + "\n\n")
	if data.Intro != "" {
		text.WriteString(data.Intro + "\n\n")
	}
	for _, r := range data.Rows {
		fmt.Fprintf(&text, "%s: %s\n", r.Label, r.Value)
	}
	if data.Outro != "" {
		text.WriteString("\n" + data.Outro + "\n")
	}

	return message{Subject: subject, HTML: buf.String(), Text: text.String()}, nil
}
