package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	awsclients "mergington-activities/internal/common/aws"
	"mergington-activities/internal/common/config"
	"mergington-activities/internal/common/errors"
	"mergington-activities/internal/common/logger"
	"mergington-activities/internal/common/metrics"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
)

const (
	ChannelEmail  = "email"
	ChannelEvents = "events"
)

type Config struct {
	EmailEnabled  bool
	FromEmail     string
	EventsEnabled bool
	TopicARN      string
	Timeout       time.Duration
}

func ConfigFrom(cfg config.NotificationConfig) Config {
	return Config{
		EmailEnabled:  cfg.Email.Enabled,
		FromEmail:     cfg.Email.FromEmail,
		EventsEnabled: cfg.Events.Enabled,
		TopicARN:      cfg.Events.TopicARN,
		Timeout:       config.GetDuration(cfg.Timeout),
	}
}

// AWSNotifier sends confirmation emails through SES and publishes roster
// events to an SNS topic.
type AWSNotifier struct {
	config    Config
	sesClient awsclients.SESService
	snsClient awsclients.SNSService
	logger    logger.Logger
}

func NewAWSNotifier(cfg Config, sesClient awsclients.SESService, snsClient awsclients.SNSService, log logger.Logger) *AWSNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &AWSNotifier{
		config:    cfg,
		sesClient: sesClient,
		snsClient: snsClient,
		logger:    log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

// FromConfig returns Noop when no channel is enabled, otherwise an
// AWSNotifier backed by real SES and SNS clients.
func FromConfig(ctx context.Context, cfg config.NotificationConfig, log logger.Logger) (Notifier, error) {
	if !cfg.Enabled() {
		return Noop{}, nil
	}

	sesClient, err := awsclients.NewSESClient(ctx, cfg.AWS.Region)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	snsClient, err := awsclients.NewSNSClient(ctx, cfg.AWS.Region)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewAWSNotifier(ConfigFrom(cfg), sesClient, snsClient, log), nil
}

func (n *AWSNotifier) ParticipantEnrolled(ctx context.Context, event Event) error {
	subject := fmt.Sprintf("You're signed up for %s", event.Activity)
	body := fmt.Sprintf("Hi %s,\n\nYou are now signed up for %s.", event.Email, event.Activity)
	if event.Schedule != "" {
		body += fmt.Sprintf("\nSchedule: %s", event.Schedule)
	}
	body += "\n\nMergington High School"
	return n.notify(ctx, event, subject, body)
}

func (n *AWSNotifier) ParticipantWithdrawn(ctx context.Context, event Event) error {
	subject := fmt.Sprintf("You've left %s", event.Activity)
	body := fmt.Sprintf("Hi %s,\n\nYou are no longer signed up for %s.\n\nMergington High School", event.Email, event.Activity)
	return n.notify(ctx, event, subject, body)
}

// notify tries every enabled channel and returns the first failure.
func (n *AWSNotifier) notify(ctx context.Context, event Event, subject, body string) error {
	ctx, cancel := context.WithTimeout(ctx, n.config.Timeout)
	defer cancel()

	var firstErr error

	if n.config.EmailEnabled {
		if err := n.sendEmail(ctx, event.Email, subject, body); err != nil {
			firstErr = n.fail(ChannelEmail, event, err)
		}
	}

	if n.config.EventsEnabled {
		if err := n.publish(ctx, event); err != nil {
			failure := n.fail(ChannelEvents, event, err)
			if firstErr == nil {
				firstErr = failure
			}
		}
	}

	if firstErr == nil {
		n.logger.Debug("notification sent", map[string]interface{}{
			"eventId":  event.ID,
			"type":     event.Type,
			"activity": event.Activity,
		})
	}
	return firstErr
}

func (n *AWSNotifier) fail(channel string, event Event, err error) error {
	metrics.NotificationFailures.WithLabelValues(channel).Inc()
	n.logger.Error("notification send failed", map[string]interface{}{
		"channel":  channel,
		"eventId":  event.ID,
		"activity": event.Activity,
		"error":    err,
	})
	return errors.NewNotificationSendFailedError(channel, err)
}

func (n *AWSNotifier) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &sestypes.Destination{
			ToAddresses: []string{to},
		},
		Message: &sestypes.Message{
			Subject: &sestypes.Content{Data: aws.String(subject)},
			Body: &sestypes.Body{
				Text: &sestypes.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.config.FromEmail),
	})
	return err
}

func (n *AWSNotifier) publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	_, err = n.snsClient.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.config.TopicARN),
		Message:  aws.String(string(payload)),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"eventType": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.Type),
			},
		},
	})
	return err
}
