package toolkit

import (
	"context"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlpaslanErdag/Orchestrator/tool"
)

func TestSendEmailTool_DeliversMessage(t *testing.T) {
	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  string
	)
	mailTool := NewSendEmailTool(func(o *MailOptions) {
		o.Host = "smtp.example.com"
		o.Username = "bot@example.com"
		o.Password = "secret"
		o.Send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
			return nil
		}
	})

	out, err := mailTool.Call(context.Background(), map[string]any{
		"to":      []any{"alice@example.com", "bob@example.com"},
		"subject": "Daily brief",
		"body":    "All systems nominal.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Email sent to alice@example.com, bob@example.com", out)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "bot@example.com", gotFrom, "sender falls back to the username")
	assert.Equal(t, []string{"alice@example.com", "bob@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Daily brief\r\n")
	assert.Contains(t, gotMsg, "To: alice@example.com, bob@example.com\r\n")
	assert.Contains(t, gotMsg, "\r\n\r\nAll systems nominal.")
}

func TestSendEmailTool_IncompleteConfig(t *testing.T) {
	mailTool := NewSendEmailTool()
	_, err := mailTool.Call(context.Background(), map[string]any{
		"to":      []any{"alice@example.com"},
		"subject": "s",
		"body":    "b",
	})

	var toolErr *tool.ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, tool.CodeExecution, toolErr.Code)
	assert.Contains(t, toolErr.Message, "AGENTFLOW_SMTP_")
}

func TestRecipientList(t *testing.T) {
	got, err := recipientList([]any{"a@b.c", "d@e.f"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@b.c", "d@e.f"}, got)

	got, err = recipientList("a@b.c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a@b.c"}, got)

	got, err = recipientList([]string{"a@b.c"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a@b.c"}, got)

	for _, bad := range []any{nil, []any{}, []any{42}, "", 7} {
		_, err := recipientList(bad)
		assert.Error(t, err, "%v", bad)
	}
}
