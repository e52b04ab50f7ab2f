// internal/mailer/mailer.go
package mailer

import "embed"

const (
	FromName        = "Task API"
	WelcomeTemplate = "user_welcome.tmpl"
)

//go:embed templates
var templateFS embed.FS

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
