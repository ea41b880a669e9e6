package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailTemplates(t *testing.T) {
	svc, err := NewEmailService(SMTPConfig{Host: "localhost", Port: 1025, Username: "hub@example.com"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Equal(t, "hub@example.com", svc.cfg.From)

	for _, name := range []string{"owner_login.html", "ownership_approved.html"} {
		t.Run(name, func(t *testing.T) {
			body, err := svc.GenerateEmailBody(name, ownerEmailData{TeamName: "Alpha <FC>", Link: "https://hub.example/owner?token=abc"})
			require.NoError(t, err)
			assert.Contains(t, body, "Alpha &lt;FC&gt;")
			assert.Contains(t, body, "https://hub.example/owner?token=abc")
		})
	}

	_, err = svc.GenerateEmailBody("missing.html", nil)
	assert.Error(t, err)
}

func TestLogMailer(t *testing.T) {
	m := NewLogMailer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()
	assert.NoError(t, m.SendOwnerLoginLink(ctx, "o@example.com", "Alpha", "https://hub.example/owner"))
	assert.NoError(t, m.SendOwnershipApproved(ctx, "o@example.com", "Alpha", "https://hub.example/owner"))
}
