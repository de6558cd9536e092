package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed *.html
var FS embed.FS

const (
	ConfirmationEmail      = "confirmation_email.html"
	EmailActivationSuccess = "email_activation_success.html"
)

// ConfirmationEmailData feeds the confirmation mail.
type ConfirmationEmailData struct {
	AppName    string
	FirstName  string
	ConfirmURL string
}

type ActivationPageData struct {
	AppName   string
	FirstName string
}

// Templates is parsed once at startup and shared read-only afterwards.
type Templates struct {
	set *template.Template
}

func Load() (*Templates, error) {
	set, err := template.New("").Funcs(template.FuncMap{
		"default": defaultFn,
	}).ParseFS(FS, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Templates{set: set}, nil
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback, value string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func (t *Templates) ConfirmationEmail(data ConfirmationEmailData) (string, error) {
	return t.render(ConfirmationEmail, data)
}

func (t *Templates) ActivationSuccess(data ActivationPageData) (string, error) {
	return t.render(EmailActivationSuccess, data)
}

func (t *Templates) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.set.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
