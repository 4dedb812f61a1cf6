package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConsoleMailerRendersResetTemplate(t *testing.T) {
	m, err := NewConsoleMailer()
	require.NoError(t, err)

	body, err := m.Render("password_reset.txt", map[string]any{
		"FullName": "Ada",
		"ResetURL": "http://localhost:8080/reset-password/tok123",
	})
	require.NoError(t, err)
	require.Contains(t, body, "Hi Ada")
	require.Contains(t, body, "http://localhost:8080/reset-password/tok123")
}

func TestConsoleMailerSend(t *testing.T) {
	m, err := NewConsoleMailer()
	require.NoError(t, err)

	err = m.Send(context.Background(), "user@example.com", "Reset your password", "password_reset.txt", map[string]any{
		"ResetURL": "http://localhost:8080/reset-password/tok123",
	})
	require.NoError(t, err)
}

func TestRenderUnknownTemplate(t *testing.T) {
	m, err := NewConsoleMailer()
	require.NoError(t, err)

	_, err = m.Render("nope.txt", nil)
	require.Error(t, err)
}
