// internal/notify/dispatcher.go

// Package notify sends payment reminders to riders over email (SES) and
// SMS (SNS). Message content is composed upstream; this package only
// validates addresses and delivers.
package notify

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	"fleet-backoffice/internal/common/config"
	stderrors "fleet-backoffice/internal/common/errors"
	"fleet-backoffice/internal/common/logger"
	"fleet-backoffice/internal/common/validation"
)

// Reminder is one outbound message for a rider. Channels with an empty
// address are skipped, not failed.
type Reminder struct {
	RiderID string `json:"riderId"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// DispatchResult records which channels delivered.
type DispatchResult struct {
	EmailSent bool `json:"emailSent"`
	SMSSent   bool `json:"smsSent"`
}

type Dispatcher struct {
	email  EmailAPI
	sms    SMSAPI
	cfg    config.NotificationConfig
	logger logger.Logger
}

func NewDispatcher(email EmailAPI, sms SMSAPI, cfg config.NotificationConfig, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		email:  email,
		sms:    sms,
		cfg:    cfg,
		logger: log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

// SendReminder delivers over every enabled channel the reminder has an
// address for. It fails only when at least one channel was attempted and
// none delivered.
func (d *Dispatcher) SendReminder(ctx context.Context, reminder Reminder) (*DispatchResult, error) {
	result := &DispatchResult{}
	attempted := 0

	if d.cfg.AWS.SES.Enabled && reminder.Email != "" {
		attempted++
		if err := d.sendEmail(ctx, reminder); err != nil {
			d.logger.Error("reminder email failed", map[string]interface{}{
				"riderId": reminder.RiderID,
				"error":   err.Error(),
			})
		} else {
			result.EmailSent = true
		}
	}

	if d.cfg.AWS.SNS.Enabled && reminder.Phone != "" {
		attempted++
		if err := d.sendSMS(ctx, reminder); err != nil {
			d.logger.Error("reminder sms failed", map[string]interface{}{
				"riderId": reminder.RiderID,
				"error":   err.Error(),
			})
		} else {
			result.SMSSent = true
		}
	}

	if attempted > 0 && !result.EmailSent && !result.SMSSent {
		return result, stderrors.NewNotificationSendFailedError("all", errors.New("no channel delivered"))
	}

	d.logger.Info("reminder dispatched", map[string]interface{}{
		"riderId":   reminder.RiderID,
		"emailSent": result.EmailSent,
		"smsSent":   result.SMSSent,
	})
	return result, nil
}

func (d *Dispatcher) sendEmail(ctx context.Context, reminder Reminder) error {
	if !validation.ValidateEmail(reminder.Email) {
		return stderrors.NewValidationFailedError([]stderrors.FieldError{
			{Field: "email", Message: "invalid email address"},
		})
	}

	_, err := d.email.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(d.cfg.AWS.SES.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{reminder.Email},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(reminder.Subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(reminder.Message)},
			},
		},
	})
	if err != nil {
		return stderrors.NewNotificationSendFailedError("email", err)
	}
	return nil
}

func (d *Dispatcher) sendSMS(ctx context.Context, reminder Reminder) error {
	if !validation.ValidatePhone(reminder.Phone) {
		return stderrors.NewInvalidPhoneFormatError(reminder.Phone)
	}

	input := &sns.PublishInput{
		PhoneNumber: aws.String(reminder.Phone),
		Message:     aws.String(reminder.Message),
	}
	if senderID := d.cfg.AWS.SNS.DefaultSMSSenderID; senderID != "" {
		input.MessageAttributes = map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(senderID),
			},
		}
	}

	if _, err := d.sms.Publish(ctx, input); err != nil {
		return stderrors.NewNotificationSendFailedError("sms", err)
	}
	return nil
}
