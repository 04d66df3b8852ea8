// internal/notify/notifier_test.go
package notify

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loan-review-console/internal/common/config"
	"loan-review-console/internal/common/errors"
	"loan-review-console/internal/common/logger"
	"loan-review-console/internal/review"
)

// ==========================
// Mock AWS Clients
// ==========================

type mockSNS struct {
	input *sns.PublishInput
	err   error
	calls int
}

func (m *mockSNS) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	m.calls++
	m.input = input
	if m.err != nil {
		return nil, m.err
	}
	return &sns.PublishOutput{}, nil
}

type mockSES struct {
	input *ses.SendEmailInput
	err   error
	calls int
}

func (m *mockSES) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	m.calls++
	m.input = input
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{}, nil
}

func testRequest() review.MeetingRequest {
	return review.MeetingRequest{
		ApplicationID: "APP-001",
		Mobile:        "+919800000001",
		Email:         "asha@example.com",
		Link:          "https://meet.jit.si/LoanRoom-abc123",
	}
}

func smsOnlyConfig() config.NotificationConfig {
	return config.NotificationConfig{SMSEnabled: true}
}

// ==========================
// Tests
// ==========================

func TestScheduleMeeting_SendsSMS(t *testing.T) {
	snsMock := &mockSNS{}
	svc := NewService(snsMock, &mockSES{}, smsOnlyConfig(), logger.NewTestLogger(t))

	err := svc.ScheduleMeeting(context.Background(), testRequest())
	require.NoError(t, err)

	require.Equal(t, 1, snsMock.calls)
	assert.Equal(t, "+919800000001", *snsMock.input.PhoneNumber)
	assert.Contains(t, *snsMock.input.Message, "APP-001")
	assert.Contains(t, *snsMock.input.Message, "https://meet.jit.si/LoanRoom-abc123")
}

func TestScheduleMeeting_SMSFailure(t *testing.T) {
	snsMock := &mockSNS{err: fmt.Errorf("throttled")}
	svc := NewService(snsMock, &mockSES{}, smsOnlyConfig(), logger.NewTestLogger(t))

	err := svc.ScheduleMeeting(context.Background(), testRequest())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotificationSendFailed, errors.CodeOf(err))
}

func TestScheduleMeeting_NoMobile(t *testing.T) {
	snsMock := &mockSNS{}
	svc := NewService(snsMock, &mockSES{}, smsOnlyConfig(), logger.NewTestLogger(t))

	req := testRequest()
	req.Mobile = ""

	err := svc.ScheduleMeeting(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeNotificationSendFailed, errors.CodeOf(err))
	assert.Equal(t, 0, snsMock.calls)
}

func TestScheduleMeeting_EmailFollowUp(t *testing.T) {
	snsMock := &mockSNS{}
	sesMock := &mockSES{}
	svc := NewService(snsMock, sesMock, config.NotificationConfig{
		SMSEnabled:   true,
		EmailEnabled: true,
		FromEmail:    "noreply@example.com",
	}, logger.NewTestLogger(t))

	err := svc.ScheduleMeeting(context.Background(), testRequest())
	require.NoError(t, err)

	require.Equal(t, 1, sesMock.calls)
	assert.Equal(t, "noreply@example.com", *sesMock.input.Source)
	assert.Equal(t, []string{"asha@example.com"}, sesMock.input.Destination.ToAddresses)
}

func TestScheduleMeeting_EmailFailureIsNotFatal(t *testing.T) {
	snsMock := &mockSNS{}
	sesMock := &mockSES{err: fmt.Errorf("rejected sender")}
	svc := NewService(snsMock, sesMock, config.NotificationConfig{
		SMSEnabled:   true,
		EmailEnabled: true,
		FromEmail:    "noreply@example.com",
	}, logger.NewTestLogger(t))

	err := svc.ScheduleMeeting(context.Background(), testRequest())
	assert.NoError(t, err)
	assert.Equal(t, 1, snsMock.calls)
}

func TestScheduleMeeting_EmailSkippedWithoutAddress(t *testing.T) {
	sesMock := &mockSES{}
	svc := NewService(&mockSNS{}, sesMock, config.NotificationConfig{
		SMSEnabled:   true,
		EmailEnabled: true,
		FromEmail:    "noreply@example.com",
	}, logger.NewTestLogger(t))

	req := testRequest()
	req.Email = ""

	err := svc.ScheduleMeeting(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 0, sesMock.calls)
}
