// internal/notify/dispatcher_test.go
package notify

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-backoffice/internal/common/config"
	stderrors "fleet-backoffice/internal/common/errors"
	"fleet-backoffice/internal/common/logger"
)

type fakeEmail struct {
	calls []*ses.SendEmailInput
	err   error
}

func (f *fakeEmail) SendEmail(ctx context.Context, input *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.calls = append(f.calls, input)
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{}, nil
}

type fakeSMS struct {
	calls []*sns.PublishInput
	err   error
}

func (f *fakeSMS) Publish(ctx context.Context, input *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.calls = append(f.calls, input)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{}, nil
}

func testNotifyConfig(enableEmail, enableSMS bool) config.NotificationConfig {
	var cfg config.NotificationConfig
	cfg.AWS.Region = "ap-south-1"
	cfg.AWS.SES.Enabled = enableEmail
	cfg.AWS.SES.FromEmail = "ops@example.com"
	cfg.AWS.SNS.Enabled = enableSMS
	cfg.AWS.SNS.DefaultSMSSenderID = "FLEETOPS"
	return cfg
}

func testReminder() Reminder {
	return Reminder{
		RiderID: "r-1",
		Email:   "rider@example.com",
		Phone:   "9876543210",
		Subject: "Payment due",
		Message: "Please clear your wallet balance.",
	}
}

func TestSendReminder_BothChannels(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	d := NewDispatcher(email, sms, testNotifyConfig(true, true), logger.NewNoOpLogger())

	result, err := d.SendReminder(context.Background(), testReminder())

	require.NoError(t, err)
	assert.True(t, result.EmailSent)
	assert.True(t, result.SMSSent)
	require.Equal(t, 1, len(email.calls))
	assert.Equal(t, "ops@example.com", *email.calls[0].Source)
	assert.Equal(t, []string{"rider@example.com"}, email.calls[0].Destination.ToAddresses)
	require.Equal(t, 1, len(sms.calls))
	assert.Equal(t, "9876543210", *sms.calls[0].PhoneNumber)
	assert.Contains(t, sms.calls[0].MessageAttributes, "AWS.SNS.SMS.SenderID")
}

func TestSendReminder_SkipsDisabledChannels(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	d := NewDispatcher(email, sms, testNotifyConfig(true, false), logger.NewNoOpLogger())

	result, err := d.SendReminder(context.Background(), testReminder())

	require.NoError(t, err)
	assert.True(t, result.EmailSent)
	assert.False(t, result.SMSSent)
	assert.Empty(t, sms.calls)
}

func TestSendReminder_SkipsMissingAddress(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	d := NewDispatcher(email, sms, testNotifyConfig(true, true), logger.NewNoOpLogger())

	reminder := testReminder()
	reminder.Email = ""

	result, err := d.SendReminder(context.Background(), reminder)

	require.NoError(t, err)
	assert.False(t, result.EmailSent)
	assert.True(t, result.SMSSent)
	assert.Empty(t, email.calls)
}

func TestSendReminder_PartialFailureStillSucceeds(t *testing.T) {
	email := &fakeEmail{err: assert.AnError}
	sms := &fakeSMS{}
	d := NewDispatcher(email, sms, testNotifyConfig(true, true), logger.NewNoOpLogger())

	result, err := d.SendReminder(context.Background(), testReminder())

	require.NoError(t, err)
	assert.False(t, result.EmailSent)
	assert.True(t, result.SMSSent)
}

func TestSendReminder_AllChannelsFail(t *testing.T) {
	email := &fakeEmail{err: assert.AnError}
	sms := &fakeSMS{err: assert.AnError}
	d := NewDispatcher(email, sms, testNotifyConfig(true, true), logger.NewNoOpLogger())

	result, err := d.SendReminder(context.Background(), testReminder())

	require.Error(t, err)
	assert.False(t, result.EmailSent)
	assert.False(t, result.SMSSent)
}

func TestSendReminder_InvalidPhoneNeverPublishes(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	d := NewDispatcher(email, sms, testNotifyConfig(false, true), logger.NewNoOpLogger())

	reminder := testReminder()
	reminder.Phone = "12345"

	_, err := d.SendReminder(context.Background(), reminder)

	require.Error(t, err)
	assert.Empty(t, sms.calls)
}

func TestSendSMS_InvalidPhoneFormatCode(t *testing.T) {
	sms := &fakeSMS{}
	d := NewDispatcher(nil, sms, testNotifyConfig(false, true), logger.NewNoOpLogger())

	reminder := testReminder()
	reminder.Phone = "12345"

	err := d.sendSMS(context.Background(), reminder)

	require.Error(t, err)
	stdErr, ok := err.(*stderrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, stderrors.ErrCodeInvalidPhoneFormat, stdErr.Code)
	assert.Empty(t, sms.calls)
}
