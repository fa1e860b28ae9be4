package email

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/medbillhq/notifykit/pkg/notify"
)

// notificationTmpl renders one notification body. Kept deliberately plain:
// transactional billing mail needs to survive strict clinic mail clients,
// not win design awards.
var notificationTmpl = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222; max-width: 600px; margin: 0 auto;">
	<h2>{{.Title}}</h2>
	<p>{{.Message}}</p>
	{{range .Actions}}<p><a href="{{.URL}}">{{.Label}}</a></p>
	{{end}}
</body>
</html>
`))

// digestTmpl renders a consolidated digest covering several queued items.
var digestTmpl = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222; max-width: 600px; margin: 0 auto;">
	<h2>{{.Heading}}</h2>
	<ul>
	{{range .Items}}<li><strong>{{.Title}}</strong>: {{.Message}}</li>
	{{end}}</ul>
</body>
</html>
`))

// renderNotification produces the HTML body for a single notification.
func renderNotification(content notify.Content) (string, error) {
	var buf strings.Builder
	if err := notificationTmpl.Execute(&buf, content); err != nil {
		return "", fmt.Errorf("render notification email: %w", err)
	}
	return buf.String(), nil
}

type digestView struct {
	Heading string
	Items   []notify.Content
}

// renderDigest produces the HTML body for a consolidated digest email.
func renderDigest(items []notify.DigestItem) (string, error) {
	view := digestView{
		Heading: fmt.Sprintf("Your billing updates (%d)", len(items)),
		Items:   make([]notify.Content, len(items)),
	}
	for i, item := range items {
		view.Items[i] = item.Content
	}

	var buf strings.Builder
	if err := digestTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render digest email: %w", err)
	}
	return buf.String(), nil
}
