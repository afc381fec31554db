// Package communication delivers headcount notifications over the channels
// the organization actually watches during an emergency: a Slack channel and
// plain email.
package communication

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/slack-go/slack"

	"github.com/checkinblaze/checkinblaze/infrastructure/logging"
	"github.com/checkinblaze/checkinblaze/model"
)

type Slack struct {
	client  *slack.Client
	options SlackOption
}

type SlackOption struct {
	InfoChannelID  string
	ErrorChannelID string
}

func NewSlack(token string, options SlackOption) *Slack {
	return &Slack{client: slack.New(token), options: options}
}

func (s *Slack) postMessage(channelID, message string) error {
	_, _, err := s.client.PostMessage(
		channelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}

func (s *Slack) Info(message string) error {
	return s.postMessage(s.options.InfoChannelID, message)
}

func (s *Slack) Error(message string) error {
	return s.postMessage(s.options.ErrorChannelID, message)
}

// Service fans a campaign notification out to every configured channel.
// Channels are optional; a nil Slack or email sender is skipped.
type Service struct {
	slack *Slack
	email *EmailSender
	log   *logrus.Logger
}

func NewService(slackClient *Slack, email *EmailSender, log *logrus.Logger) *Service {
	return &Service{slack: slackClient, email: email, log: log}
}

// NotifyCampaign announces the campaign to the Slack info channel and mails
// the targeted users. Partial delivery failures are logged and reported as
// one error; the campaign itself is unaffected.
func (s *Service) NotifyCampaign(ctx context.Context, campaign *model.HeadcountCampaign, recipients []string) error {
	message := fmt.Sprintf(
		"Headcount campaign %q started by %s. Please submit a check-in. (%d people targeted)",
		campaign.Title, campaign.InitiatedByDisplayName, len(campaign.TargetedUserIDs),
	)

	var firstErr error
	if s.slack != nil {
		if err := s.slack.Info(message); err != nil {
			logging.LogError(s.log, "communication", "NotifyCampaign", "slack", err)
			firstErr = err
		}
	}
	if s.email != nil && len(recipients) > 0 {
		subject := fmt.Sprintf("Headcount: %s", campaign.Title)
		if err := s.email.Send(ctx, recipients, subject, message); err != nil {
			logging.LogError(s.log, "communication", "NotifyCampaign", "email", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
