package templates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmationEmail(t *testing.T) {
	tpl, err := Load()
	require.NoError(t, err)

	html, err := tpl.ConfirmationEmail(ConfirmationEmailData{
		AppName:    "ServiceHub",
		FirstName:  "Ama",
		ConfirmURL: "http://localhost:8080/confirm?token=abc",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "Hi Ama,")
	assert.Contains(t, html, `href="http://localhost:8080/confirm?token=abc"`)
}

func TestConfirmationEmailFallbackName(t *testing.T) {
	tpl, err := Load()
	require.NoError(t, err)

	html, err := tpl.ConfirmationEmail(ConfirmationEmailData{ConfirmURL: "http://h/confirm?token=x"})
	require.NoError(t, err)
	assert.Contains(t, html, "Hi there,")
}

func TestConfirmationEmailEscapesName(t *testing.T) {
	tpl, err := Load()
	require.NoError(t, err)

	html, err := tpl.ConfirmationEmail(ConfirmationEmailData{FirstName: "<script>x</script>"})
	require.NoError(t, err)
	assert.False(t, strings.Contains(html, "<script>"))
}

func TestActivationSuccess(t *testing.T) {
	tpl, err := Load()
	require.NoError(t, err)

	html, err := tpl.ActivationSuccess(ActivationPageData{AppName: "ServiceHub", FirstName: "Ama"})
	require.NoError(t, err)
	assert.Contains(t, html, "Your email has been confirmed")
	assert.Contains(t, html, "Thanks, Ama.")
}
