package communication

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// EmailSender sends plain-text notification mail through SES.
type EmailSender struct {
	client *ses.Client
	from   string
}

func NewEmailSender(ctx context.Context, from string) (*EmailSender, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return &EmailSender{client: ses.NewFromConfig(cfg), from: from}, nil
}

func (e *EmailSender) Send(ctx context.Context, to []string, subject, body string) error {
	raw, err := buildEmailBuffer(e.from, to, subject, body)
	if err != nil {
		return err
	}

	_, err = e.client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		RawMessage: &types.RawMessage{Data: raw.Bytes()},
	})
	return err
}

func buildEmailBuffer(from string, to []string, subject, body string) (*bytes.Buffer, error) {
	if len(to) == 0 {
		return nil, fmt.Errorf("no recipients")
	}

	var raw bytes.Buffer
	raw.WriteString(fmt.Sprintf("From: %s\r\n", from))
	raw.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(to, ", ")))
	raw.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	raw.WriteString("MIME-Version: 1.0\r\n")
	raw.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	raw.WriteString("\r\n")
	raw.WriteString(body)
	raw.WriteString("\r\n")
	return &raw, nil
}
