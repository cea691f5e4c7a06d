// internal/sanction/notifier.go
package sanction

import (
	"context"
	"fmt"

	"loan-workers/internal/common/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Contact resolves the delivery addresses for a customer.
type Contact struct {
	Email string
	Phone string
}

// ContactResolver looks up where to send the notice.
type ContactResolver func(ctx context.Context, customerID string) (Contact, error)

// AWSNotifier delivers the sanction notice by email, with an SMS ping when
// a phone number is on file.
type AWSNotifier struct {
	ses       SESService
	sns       SNSService
	fromEmail string
	resolve   ContactResolver
	logger    logger.Logger
}

func NewAWSNotifier(sesClient SESService, snsClient SNSService, fromEmail string, resolve ContactResolver, log logger.Logger) *AWSNotifier {
	return &AWSNotifier{
		ses:       sesClient,
		sns:       snsClient,
		fromEmail: fromEmail,
		resolve:   resolve,
		logger:    log.WithFields(map[string]interface{}{"component": "sanction-notifier"}),
	}
}

func (n *AWSNotifier) NotifySanction(ctx context.Context, letter Letter, document []byte) error {
	contact, err := n.resolve(ctx, letter.CustomerID)
	if err != nil {
		return fmt.Errorf("resolve contact for %s: %w", letter.CustomerID, err)
	}

	subject := fmt.Sprintf("Your loan is sanctioned - %s", letter.ReferenceNumber)
	body := string(document)

	if contact.Email != "" {
		_, err := n.ses.SendEmail(ctx, &ses.SendEmailInput{
			Destination: &sestypes.Destination{
				ToAddresses: []string{contact.Email},
			},
			Message: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: aws.String(body)},
				},
			},
			Source: aws.String(n.fromEmail),
		})
		if err != nil {
			return fmt.Errorf("send sanction email: %w", err)
		}
	}

	if contact.Phone != "" && n.sns != nil {
		message := fmt.Sprintf("Your loan has been sanctioned. Reference: %s. Check your email for the letter.", letter.ReferenceNumber)
		if _, err := n.sns.Publish(ctx, &sns.PublishInput{
			PhoneNumber: aws.String(contact.Phone),
			Message:     aws.String(message),
		}); err != nil {
			n.logger.WithError(err).Warn("sanction sms failed", map[string]interface{}{
				"customer_id": letter.CustomerID,
			})
		}
	}

	return nil
}
