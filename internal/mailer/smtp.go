// internal/mailer/smtp.go
package mailer

import (
	"bytes"
	"fmt"
	"text/template"

	gomail "gopkg.in/mail.v2"
)

type SMTPClient struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

func (m SMTPClient) Send(templateFile, username, email string, data any) (int, error) {
	subject, body, err := render(templateFile, data)
	if err != nil {
		return 0, err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.From, FromName)
	msg.SetAddressHeader("To", email, username)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	if err := d.DialAndSend(msg); err != nil {
		return 0, fmt.Errorf("send %s to %s: %w", templateFile, email, err)
	}

	return 200, nil
}

// render ejecuta los bloques "subject" y "body" de una plantilla embebida.
func render(templateFile string, data any) (string, string, error) {
	tmpl, err := template.New("email").ParseFS(templateFS, "templates/"+templateFile)
	if err != nil {
		return "", "", err
	}

	subject := new(bytes.Buffer)
	if err = tmpl.ExecuteTemplate(subject, "subject", data); err != nil {
		return "", "", err
	}

	body := new(bytes.Buffer)
	if err = tmpl.ExecuteTemplate(body, "body", data); err != nil {
		return "", "", err
	}

	return subject.String(), body.String(), nil
}
