package mailer

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/gatherkit/registrar/internal/importer"
)

// =============================================================================
// CONFIRMATION MAILER
// =============================================================================
// Sends registration confirmation emails through AWS SES v2. Callers that run
// without SES credentials get no mailer at all (nil), which the import
// executor treats as email dispatch disabled.

// Sender delivers confirmation emails via AWS SES.
type Sender struct {
	client    *sesv2.Client
	templates *templates
	fromEmail string
	fromName  string
}

var _ importer.ConfirmationSender = (*Sender)(nil)

// NewSender creates an SES-backed confirmation mailer. Returns an error when
// the AWS config cannot be assembled or the templates fail to parse.
func NewSender(ctx context.Context, accessKey, secretKey, region, fromEmail, fromName string) (*Sender, error) {
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	tmpl, err := newTemplates()
	if err != nil {
		return nil, err
	}

	return &Sender{
		client:    sesv2.NewFromConfig(cfg),
		templates: tmpl,
		fromEmail: fromEmail,
		fromName:  fromName,
	}, nil
}

// SendConfirmation renders and dispatches one confirmation email.
func (s *Sender) SendConfirmation(ctx context.Context, c importer.Confirmation) error {
	subject, body, err := s.templates.renderConfirmation(c)
	if err != nil {
		return err
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)),
		Destination:      &types.Destination{ToAddresses: []string{c.Email}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
				},
			},
		},
		EmailTags: []types.MessageTag{
			{Name: aws.String("purpose"), Value: aws.String("import_confirmation")},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("sending confirmation to %s: %w", c.Email, err)
	}

	messageID := ""
	if result.MessageId != nil {
		messageID = *result.MessageId
	}
	log.Printf("[Mailer] Confirmation sent to %s (id: %s)", c.Email, messageID)

	return nil
}
