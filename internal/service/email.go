package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nexora-hq/nexora/internal/domain"
	"github.com/nexora-hq/nexora/internal/llm"
	"github.com/nexora-hq/nexora/internal/mail"
)

// EmailService handles scheduled AI-generated email automations.
type EmailService struct {
	emailRepo domain.EmailAutomationRepository
	userRepo  domain.UserRepository
	provider  llm.CompletionProvider
	mailer    mail.Sender
}

// NewEmailService creates a new email automation service
func NewEmailService(
	emailRepo domain.EmailAutomationRepository,
	userRepo domain.UserRepository,
	provider llm.CompletionProvider,
	mailer mail.Sender,
) *EmailService {
	return &EmailService{
		emailRepo: emailRepo,
		userRepo:  userRepo,
		provider:  provider,
		mailer:    mailer,
	}
}

// Create schedules a new automation. Body generation happens at send time,
// not here.
func (s *EmailService) Create(ctx context.Context, actor domain.Actor, input domain.EmailAutomationCreate) (*domain.EmailAutomation, error) {
	tone := input.Tone
	if tone == "" {
		tone = domain.ToneProfessional
	}

	automation := &domain.EmailAutomation{
		WorkspaceID: actor.WorkspaceID,
		CreatedBy:   actor.UserID,
		To:          input.To,
		Subject:     input.Subject,
		Context:     input.Context,
		Tone:        tone,
		ScheduledAt: input.ScheduledAt,
		Status:      domain.EmailStatusScheduled,
	}
	if err := s.emailRepo.Create(ctx, automation); err != nil {
		return nil, fmt.Errorf("failed to create email automation: %w", err)
	}
	return automation, nil
}

// List returns the actor's workspace automations.
func (s *EmailService) List(ctx context.Context, actor domain.Actor) ([]domain.EmailAutomation, error) {
	automations, err := s.emailRepo.ListByWorkspace(ctx, actor.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list email automations: %w", err)
	}
	return automations, nil
}

// ProcessDue is the scheduler entry point: generate and send every automation
// whose scheduled time has passed. Jobs are handled one at a time and a
// failure marks only its own job; the rest of the batch continues.
func (s *EmailService) ProcessDue(ctx context.Context) error {
	now := time.Now()
	due, err := s.emailRepo.FindDue(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to find due email automations: %w", err)
	}

	for _, automation := range due {
		job := automation
		if err := s.process(ctx, &job); err != nil {
			log.Error().Err(err).Str("automation", job.ID.Hex()).Msg("email automation failed")
			job.Status = domain.EmailStatusFailed
			job.Error = err.Error()
			if uerr := s.emailRepo.Update(ctx, &job); uerr != nil {
				log.Error().Err(uerr).Str("automation", job.ID.Hex()).Msg("failed to mark automation failed")
			}
			continue
		}

		sentAt := time.Now()
		job.Status = domain.EmailStatusSent
		job.SentAt = &sentAt
		job.Error = ""
		if err := s.emailRepo.Update(ctx, &job); err != nil {
			log.Error().Err(err).Str("automation", job.ID.Hex()).Msg("failed to mark automation sent")
			continue
		}
		log.Info().Str("automation", job.ID.Hex()).Str("to", job.To).Msg("automation email sent")
	}
	return nil
}

func (s *EmailService) process(ctx context.Context, job *domain.EmailAutomation) error {
	creator, err := s.userRepo.GetByID(ctx, job.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to resolve automation creator: %w", err)
	}

	senderName := "Nexora"
	replyTo := ""
	if creator != nil {
		senderName = creator.Name
		replyTo = creator.Email
	}

	body, err := s.provider.Complete(ctx, llm.EmailPrompt(job.Subject, job.Context, job.Tone, senderName))
	if err != nil {
		return fmt.Errorf("failed to generate email body: %w", err)
	}
	job.GeneratedBody = body

	if err := s.mailer.Send(mail.Message{
		To:         job.To,
		Subject:    job.Subject,
		HTML:       body,
		SenderName: senderName,
		ReplyTo:    replyTo,
	}); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
