// Package mail relays contact-form submissions to the blog author's
// mailbox over SES. Relay failures are reported to the caller; nothing
// about a submission is persisted.
package mail

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	sc "github.com/dberzins/inkwell/internal/server/config"
	"github.com/dberzins/inkwell/internal/server/models"
)

// Seams for testing the AWS SDK wiring without real credentials.
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newSESClientFromConfig = func(cfg aws.Config) *sesv2.Client {
		return sesv2.NewFromConfig(cfg)
	}

	sendEmail = func(client *sesv2.Client, ctx context.Context, in *sesv2.SendEmailInput) (*sesv2.SendEmailOutput, error) {
		return client.SendEmail(ctx, in)
	}
)

// Mailer delivers a contact-form submission.
type Mailer interface {
	SendContactMessage(ctx context.Context, msg *models.ContactMessage) error
}

// SESMailer sends each submission as a plain-text email from the
// configured sender address to the configured recipient, with the
// visitor's address set as Reply-To.
type SESMailer struct {
	config *sc.Config
}

func NewSESMailer(config *sc.Config) *SESMailer {
	return &SESMailer{config: config}
}

func (m *SESMailer) SendContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	cfg, err := loadDefaultAWSConfig(ctx, config.WithRegion(m.config.MailRegion))
	if err != nil {
		return fmt.Errorf("error loading mail config: %v", err)
	}

	client := newSESClientFromConfig(cfg)

	subject := fmt.Sprintf("New contact message from %s", msg.Name)
	body := fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\nMessage:\n%s\n",
		msg.Name, msg.Email, msg.Phone, msg.Message)

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.config.MailSender),
		Destination: &types.Destination{
			ToAddresses: []string{m.config.ContactRecipient},
		},
		ReplyToAddresses: []string{msg.Email},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(subject),
				},
				Body: &types.Body{
					Text: &types.Content{
						Charset: aws.String("UTF-8"),
						Data:    aws.String(body),
					},
				},
			},
		},
	}

	if _, err := sendEmail(client, ctx, input); err != nil {
		return fmt.Errorf("error sending contact message: %v", err)
	}

	return nil
}
