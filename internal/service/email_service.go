package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"routinestar/internal/repository"
)

// EmailService sends parent notifications via Amazon SES. Notifications are
// best-effort: failures are logged, never returned to the triggering flow.
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	familyRepo *repository.FamilyRepository
	childRepo  *repository.ChildRepository
	enabled    bool
}

// NewEmailService creates a new email service. An empty fromEmail disables
// sending entirely.
func NewEmailService(awsRegion, fromEmail string, familyRepo *repository.FamilyRepository, childRepo *repository.ChildRepository) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_SENDER_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(), config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		familyRepo: familyRepo,
		childRepo:  childRepo,
		enabled:    true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// NotifyAchievement tells the parent their child earned an achievement
func (s *EmailService) NotifyAchievement(familyID, profileID int64, achievementName string) {
	if !s.enabled {
		return
	}

	parentEmail, childName, ok := s.resolveRecipient(familyID, profileID)
	if !ok {
		return
	}

	subject := fmt.Sprintf("%s earned a new badge!", childName)
	body := fmt.Sprintf("Hi,\n\n%s just earned the %q achievement in RoutineStar. Nice work!\n\n---\nThis is an automated email from RoutineStar. Please do not reply.\n", childName, achievementName)

	s.send(parentEmail, subject, body)
}

// NotifyRedemption tells the parent their child redeemed a reward
func (s *EmailService) NotifyRedemption(familyID, profileID int64, rewardName string, pointsCost, balanceAfter int) {
	if !s.enabled {
		return
	}

	parentEmail, childName, ok := s.resolveRecipient(familyID, profileID)
	if !ok {
		return
	}

	subject := fmt.Sprintf("%s redeemed a reward", childName)
	body := fmt.Sprintf("Hi,\n\n%s just redeemed %q for %d points in RoutineStar. Their new balance is %d points.\n\n---\nThis is an automated email from RoutineStar. Please do not reply.\n", childName, rewardName, pointsCost, balanceAfter)

	s.send(parentEmail, subject, body)
}

// resolveRecipient looks up the parent email and child name for a notification
func (s *EmailService) resolveRecipient(familyID, profileID int64) (parentEmail, childName string, ok bool) {
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil || family == nil || family.ParentEmail == "" {
		return "", "", false
	}

	child, err := s.childRepo.GetChildByID(profileID)
	if err != nil || child == nil {
		return "", "", false
	}

	return family.ParentEmail, child.Name, true
}

// send delivers a plain-text email through SES, logging failures
func (s *EmailService) send(toEmail, subject, textBody string) {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(context.TODO(), input); err != nil {
		log.Printf("Warning: failed to send email to %s: %v", toEmail, err)
		return
	}

	log.Printf("Email sent: to=%s, subject=%s", toEmail, subject)
}
