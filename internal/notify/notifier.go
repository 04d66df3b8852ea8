// internal/notify/notifier.go
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"loan-review-console/internal/common/config"
	"loan-review-console/internal/common/errors"
	"loan-review-console/internal/common/logger"
	"loan-review-console/internal/review"
)

type SNSAPI interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type SESAPI interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// Service delivers meeting invitations to the beneficiary. SMS is the
// primary channel; email is a follow-up and never fails the scheduling.
type Service struct {
	sns    SNSAPI
	ses    SESAPI
	config config.NotificationConfig
	logger logger.Logger
}

func NewService(snsClient SNSAPI, sesClient SESAPI, cfg config.NotificationConfig, log logger.Logger) *Service {
	return &Service{
		sns:    snsClient,
		ses:    sesClient,
		config: cfg,
		logger: log,
	}
}

// ScheduleMeeting sends the meeting link over SMS, and over email when a
// beneficiary address is on file and the email channel is enabled.
func (s *Service) ScheduleMeeting(ctx context.Context, req review.MeetingRequest) error {
	if req.Mobile == "" {
		return errors.NewNotificationSendFailedError(req.ApplicationID, fmt.Errorf("beneficiary has no mobile number"))
	}

	message := fmt.Sprintf(
		"Your loan application %s requires a discussion. Please join the meeting: %s",
		req.ApplicationID, req.Link,
	)

	if s.config.SMSEnabled {
		_, err := s.sns.Publish(ctx, &sns.PublishInput{
			PhoneNumber: aws.String(req.Mobile),
			Message:     aws.String(message),
		})
		if err != nil {
			s.logger.Error("Failed to send meeting SMS", map[string]interface{}{
				"applicationId": req.ApplicationID,
				"error":         err.Error(),
			})
			return errors.NewNotificationSendFailedError(req.ApplicationID, err)
		}
		s.logger.Info("Meeting SMS sent", map[string]interface{}{
			"applicationId": req.ApplicationID,
		})
	}

	if s.config.EmailEnabled && req.Email != "" {
		if err := s.sendEmail(ctx, req, message); err != nil {
			s.logger.Warn("Meeting email failed, SMS already delivered", map[string]interface{}{
				"applicationId": req.ApplicationID,
				"error":         err.Error(),
			})
		}
	}

	return nil
}

func (s *Service) sendEmail(ctx context.Context, req review.MeetingRequest, message string) error {
	_, err := s.ses.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(s.config.FromEmail),
		Destination: &sestypes.Destination{
			ToAddresses: []string{req.Email},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{
				Data: aws.String(fmt.Sprintf("Meeting scheduled for application %s", req.ApplicationID)),
			},
			Body: &sestypes.Body{
				Text: &sestypes.Content{
					Data: aws.String(message),
				},
			},
		},
	})
	return err
}
