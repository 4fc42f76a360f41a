// Package templates renders the transactional emails the clinic sends:
// the account verification mail after registration and the password reset
// mail. Kept deliberately small; branding fields come from job data.
package templates

import (
	"bytes"
	"fmt"
	htmpl "html/template"
	texttpl "text/template"
)

const verifyHTML = `<html><body>
<p>Hi {{.Name}},</p>
<p>Welcome to {{.CompanyName}}. Please confirm your email address to activate your account:</p>
<p><a href="{{.ActionURL}}">Verify email address</a></p>
<p>If you did not create this account, you can ignore this message.</p>
</body></html>`

const verifyText = `Hi {{.Name}},

Welcome to {{.CompanyName}}. Confirm your email address to activate your account:

{{.ActionURL}}

If you did not create this account, you can ignore this message.`

const resetHTML = `<html><body>
<p>Hi {{.Name}},</p>
<p>We received a request to reset the password for your {{.CompanyName}} account.</p>
<p><a href="{{.ActionURL}}">Reset password</a></p>
<p>The link expires in {{.ExpiresIn}}. If you did not request this, no action is needed.</p>
</body></html>`

const resetText = `Hi {{.Name}},

We received a request to reset the password for your {{.CompanyName}} account:

{{.ActionURL}}

The link expires in {{.ExpiresIn}}. If you did not request this, no action is needed.`

type emailTemplate struct {
	subject string
	html    *htmpl.Template
	text    *texttpl.Template
}

var registry = map[string]emailTemplate{
	"verify_email": {
		subject: "Verify your email address",
		html:    htmpl.Must(htmpl.New("verify_email").Parse(verifyHTML)),
		text:    texttpl.Must(texttpl.New("verify_email").Parse(verifyText)),
	},
	"reset_password": {
		subject: "Reset your password",
		html:    htmpl.Must(htmpl.New("reset_password").Parse(resetHTML)),
		text:    texttpl.Must(texttpl.New("reset_password").Parse(resetText)),
	},
}

// Render returns subject, text and html bodies for a known template name.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	t, ok := registry[name]
	if !ok {
		return "", "", "", fmt.Errorf("unknown email template %q", name)
	}
	var hb, tb bytes.Buffer
	if err := t.html.Execute(&hb, data); err != nil {
		return "", "", "", err
	}
	if err := t.text.Execute(&tb, data); err != nil {
		return "", "", "", err
	}
	return t.subject, tb.String(), hb.String(), nil
}
