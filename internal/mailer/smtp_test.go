package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderWelcome(t *testing.T) {
	subject, body, err := render(WelcomeTemplate, map[string]string{
		"Name":  "Ann",
		"Email": "ann@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "Welcome to Task API", subject)
	assert.Contains(t, body, "Hi Ann,")
	assert.Contains(t, body, "ann@example.com")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, err := render("missing.tmpl", nil)
	assert.Error(t, err)
}

func TestSendFailsWithoutServer(t *testing.T) {
	c := SMTPClient{Host: "127.0.0.1", Port: 1, From: "no-reply@example.com"}

	status, err := c.Send(WelcomeTemplate, "Ann", "ann@example.com", map[string]string{"Name": "Ann", "Email": "ann@example.com"})
	assert.Error(t, err)
	assert.Zero(t, status)
}
