package toolkit

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/AlpaslanErdag/Orchestrator/tool"
)

// MailOptions configure the email tool. Host, Username and Password are
// required for actual delivery; tests inject a Send override instead.
type MailOptions struct {
	Host     string
	Port     int
	Username string
	Password string
	// From is the default sender address; falls back to Username.
	From string
	// Send overrides SMTP delivery, mainly for tests.
	Send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewSendEmailTool returns the send_email tool delivering plain-text mail
// over SMTP with STARTTLS.
func NewSendEmailTool(optFns ...func(o *MailOptions)) *tool.FunctionTool {
	opts := MailOptions{Port: 587, Send: smtp.SendMail}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.From == "" {
		opts.From = opts.Username
	}

	return tool.NewFunctionTool(
		"send_email",
		"Send an email with the given subject and body to one or more recipients.",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"to": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "string"},
					"description": "List of recipient email addresses.",
				},
				"subject": map[string]any{
					"type":        "string",
					"description": "Subject line of the email.",
				},
				"body": map[string]any{
					"type":        "string",
					"description": "Plain-text email body.",
				},
			},
			"required": []string{"to", "subject", "body"},
		},
		func(_ context.Context, args map[string]any) (any, error) {
			if opts.Host == "" || opts.Username == "" || opts.Password == "" {
				return nil, &tool.ToolError{
					Tool:    "send_email",
					Message: "SMTP configuration is incomplete; set the AGENTFLOW_SMTP_* settings",
					Code:    tool.CodeExecution,
				}
			}

			to, err := recipientList(args["to"])
			if err != nil {
				return nil, &tool.ToolError{
					Tool:    "send_email",
					Message: err.Error(),
					Code:    tool.CodeValidation,
				}
			}
			subject, _ := args["subject"].(string)
			body, _ := args["body"].(string)

			msg := buildMessage(opts.From, to, subject, body)
			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			auth := smtp.PlainAuth("", opts.Username, opts.Password, opts.Host)
			if err := opts.Send(addr, auth, opts.From, to, msg); err != nil {
				return nil, fmt.Errorf("send mail: %w", err)
			}
			return fmt.Sprintf("Email sent to %s", strings.Join(to, ", ")), nil
		},
	)
}

func recipientList(v any) ([]string, error) {
	switch t := v.(type) {
	case []string:
		if len(t) == 0 {
			return nil, fmt.Errorf("recipient list is empty")
		}
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok || s == "" {
				return nil, fmt.Errorf("recipient list contains a non-string entry")
			}
			out = append(out, s)
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("recipient list is empty")
		}
		return out, nil
	case string:
		if t == "" {
			return nil, fmt.Errorf("recipient list is empty")
		}
		return []string{t}, nil
	default:
		return nil, fmt.Errorf("recipients must be a list of email addresses")
	}
}

func buildMessage(from string, to []string, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
