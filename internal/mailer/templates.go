package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/pkg/errors"
)

type (
	// ItemWarningData feeds the item deletion warning template.
	ItemWarningData struct {
		Name          string
		ItemTitle     string
		DaysRemaining int
		ItemURL       string
	}

	// UserWarningData feeds the account deletion warning template.
	UserWarningData struct {
		Name          string
		DaysRemaining int
		LoginURL      string
	}
)

var itemWarningTemplate = template.Must(template.New("item_warning").Parse(`<html>
<body>
<p>Hi {{.Name}},</p>
<p>Your listing <strong>{{.ItemTitle}}</strong> has been inactive for a while and is
scheduled for deletion in <strong>{{.DaysRemaining}} day{{if ne .DaysRemaining 1}}s{{end}}</strong>.</p>
<p>If the item is still lost or unclaimed, open the listing to keep it alive:</p>
<p><a href="{{.ItemURL}}">{{.ItemURL}}</a></p>
<p>— The campus lost &amp; found team</p>
</body>
</html>`))

var userWarningTemplate = template.Must(template.New("user_warning").Parse(`<html>
<body>
<p>Hi {{.Name}},</p>
<p>Your account is scheduled for deletion in
<strong>{{.DaysRemaining}} day{{if ne .DaysRemaining 1}}s{{end}}</strong>.
All of your listings, conversations and notifications will be permanently removed.</p>
<p>Signing in before then keeps your account:</p>
<p><a href="{{.LoginURL}}">{{.LoginURL}}</a></p>
<p>— The campus lost &amp; found team</p>
</body>
</html>`))

// ItemDeletionWarning renders the subject and HTML body of the warning email
// sent before an inactive item is purged.
func ItemDeletionWarning(data ItemWarningData) (subject, html string, err error) {
	subject = fmt.Sprintf("Your listing %q will be deleted soon", data.ItemTitle)

	var buf bytes.Buffer
	if err := itemWarningTemplate.Execute(&buf, data); err != nil {
		return "", "", errors.Wrap(err, "could not render item warning")
	}
	return subject, buf.String(), nil
}

// UserDeletionWarning renders the subject and HTML body of the warning email
// sent before an inactive account is purged.
func UserDeletionWarning(data UserWarningData) (subject, html string, err error) {
	subject = "Your campus lost & found account will be deleted soon"

	var buf bytes.Buffer
	if err := userWarningTemplate.Execute(&buf, data); err != nil {
		return "", "", errors.Wrap(err, "could not render user warning")
	}
	return subject, buf.String(), nil
}
