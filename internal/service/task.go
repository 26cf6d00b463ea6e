package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nexora-hq/nexora/internal/domain"
	"github.com/nexora-hq/nexora/internal/llm"
	"github.com/nexora-hq/nexora/internal/mail"
	"github.com/nexora-hq/nexora/internal/policy"
)

// Reminders for a single invoice-linked task are capped per local calendar day.
const maxRemindersPerDay = 2

// TaskService handles the task lifecycle: creation, the pending →
// in_progress → done state machine, reminder sends and AI analysis.
type TaskService struct {
	taskRepo    domain.TaskRepository
	userRepo    domain.UserRepository
	invoiceRepo domain.InvoiceRepository
	provider    llm.CompletionProvider
	mailer      mail.Sender
}

// NewTaskService creates a new task service
func NewTaskService(
	taskRepo domain.TaskRepository,
	userRepo domain.UserRepository,
	invoiceRepo domain.InvoiceRepository,
	provider llm.CompletionProvider,
	mailer mail.Sender,
) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		invoiceRepo: invoiceRepo,
		provider:    provider,
		mailer:      mailer,
	}
}

// Create creates a task; admin only. The assignee must resolve to a user in
// the actor's workspace.
func (s *TaskService) Create(ctx context.Context, actor domain.Actor, input domain.TaskCreate) (*domain.Task, error) {
	if err := policy.CanCreateTask(actor); err != nil {
		return nil, err
	}

	assigneeID, err := primitive.ObjectIDFromHex(input.AssignedTo)
	if err != nil {
		return nil, domain.InvalidAssignee("invalid assignee")
	}

	assignee, err := s.userRepo.GetInWorkspace(ctx, assigneeID, actor.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve assignee: %w", err)
	}
	if assignee == nil {
		return nil, domain.InvalidAssignee("invalid assignee")
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	task := &domain.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.TaskStatusPending,
		Priority:    priority,
		DueDate:     input.DueDate,
		AssignedTo:  assignee.ID,
		CreatedBy:   actor.UserID,
		WorkspaceID: actor.WorkspaceID,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

// List returns the tasks visible to the actor.
func (s *TaskService) List(ctx context.Context, actor domain.Actor) ([]domain.Task, error) {
	tasks, err := s.taskRepo.Find(ctx, policy.TaskListFilter(actor))
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Get returns one visible task by id.
func (s *TaskService) Get(ctx context.Context, actor domain.Actor, taskID primitive.ObjectID) (*domain.Task, error) {
	task, err := s.taskRepo.FindOne(ctx, policy.TaskReadFilter(actor, taskID))
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, domain.NotFound("task not found")
	}
	return task, nil
}

// Update applies a generic edit. The done status is unreachable here: it is
// rejected both as a target and once a task is already closed.
func (s *TaskService) Update(ctx context.Context, actor domain.Actor, taskID primitive.ObjectID, input domain.TaskUpdate) (*domain.Task, error) {
	task, err := s.taskRepo.FindOne(ctx, policy.TaskWriteFilter(actor, taskID))
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, domain.NotFound("task not found")
	}

	if task.Status == domain.TaskStatusDone {
		return nil, domain.InvalidTransition("task is closed")
	}
	if input.Status != nil && *input.Status == domain.TaskStatusDone {
		return nil, domain.InvalidTransition("use the close operation to mark a task done")
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// Close moves a task to done. A non-empty reason is mandatory.
func (s *TaskService) Close(ctx context.Context, actor domain.Actor, taskID primitive.ObjectID, input domain.TaskClose) (*domain.Task, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, domain.InvalidInput("close reason is required")
	}

	task, err := s.taskRepo.FindOne(ctx, policy.TaskWriteFilter(actor, taskID))
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, domain.NotFound("task not found")
	}

	now := time.Now()
	actorID := actor.UserID
	task.Status = domain.TaskStatusDone
	task.ClosedReason = input.Reason
	task.ClosedAt = &now
	task.ClosedBy = &actorID

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to close task: %w", err)
	}
	return task, nil
}

// Delete removes a task; admin only.
func (s *TaskService) Delete(ctx context.Context, actor domain.Actor, taskID primitive.ObjectID) error {
	filter, err := policy.TaskDeleteFilter(actor, taskID)
	if err != nil {
		return err
	}

	deleted, err := s.taskRepo.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if !deleted {
		return domain.NotFound("task not found")
	}
	return nil
}

// SendInvoiceReminder emails the customer of the invoice linked to a
// follow-up task, at most twice per local calendar day.
func (s *TaskService) SendInvoiceReminder(ctx context.Context, actor domain.Actor, taskID primitive.ObjectID) (*domain.Task, error) {
	task, err := s.taskRepo.FindOne(ctx, policy.TaskWriteFilter(actor, taskID))
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if task == nil {
		return nil, domain.NotFound("task not found")
	}

	if task.Source != domain.TaskSourceInvoice || task.SourceID == nil {
		return nil, domain.InvalidInput("task is not linked to an invoice")
	}

	invoice, err := s.invoiceRepo.FindOne(ctx, bson.M{"_id": *task.SourceID, "workspace": actor.WorkspaceID})
	if err != nil {
		return nil, fmt.Errorf("failed to get linked invoice: %w", err)
	}
	if invoice == nil {
		return nil, domain.NotFound("linked invoice not found")
	}
	if invoice.Customer.Email == "" {
		return nil, domain.InvalidInput("invoice customer has no email address")
	}

	now := time.Now()
	if remindersSentOn(task.ReminderLog, now) >= maxRemindersPerDay {
		return nil, domain.RateLimited(fmt.Sprintf("reminder limit reached: at most %d reminders per day for this task", maxRemindersPerDay))
	}

	err = s.mailer.Send(mail.Message{
		To:      invoice.Customer.Email,
		Subject: fmt.Sprintf("Payment reminder for invoice %s", invoice.InvoiceNumber),
		HTML: fmt.Sprintf(`<h2>Hi %s,</h2>
<p>This is a friendly reminder that invoice <b>%s</b> for <b>%s</b> is overdue.</p>
<p>Please arrange payment at your earliest convenience.</p>`,
			invoice.Customer.Name, invoice.InvoiceNumber, formatINR(invoice.TotalAmount)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send reminder: %w", err)
	}

	task.ReminderLog = append(task.ReminderLog, domain.ReminderEntry{SentAt: now})
	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to record reminder: %w", err)
	}
	return task, nil
}

// remindersSentOn counts log entries in the same local midnight-to-midnight
// window as now.
func remindersSentOn(entries []domain.ReminderEntry, now time.Time) int {
	year, month, day := now.Date()
	dayStart := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	count := 0
	for _, entry := range entries {
		sentAt := entry.SentAt.In(now.Location())
		if !sentAt.Before(dayStart) && sentAt.Before(dayEnd) {
			count++
		}
	}
	return count
}

// taskAnalysisFallback is returned whenever the completion service fails or
// produces unusable output; the analysis path never hard-fails.
func taskAnalysisFallback(note string) domain.TaskAnalysis {
	return domain.TaskAnalysis{
		SuggestedPriority: domain.PriorityMedium,
		EstimatedTime:     "1 day",
		Note:              note,
	}
}

var estimateNumberRe = regexp.MustCompile(`(\d+)`)

// dueDateFromEstimate derives a due date from estimates like "2 days" or
// "4 hours". Unparseable estimates default to one day out.
func dueDateFromEstimate(estimate string, now time.Time) time.Time {
	number := 1
	if match := estimateNumberRe.FindString(estimate); match != "" {
		if n, err := strconv.Atoi(match); err == nil {
			number = n
		}
	}
	if strings.Contains(strings.ToLower(estimate), "day") {
		return now.AddDate(0, 0, number)
	}
	return now.Add(time.Duration(number) * time.Hour)
}

// Analyze asks the completion service for a priority/effort estimate and
// optionally persists it onto a task the actor may write.
func (s *TaskService) Analyze(ctx context.Context, actor domain.Actor, input domain.TaskAnalysisInput) (*domain.TaskAnalysis, error) {
	analysis := taskAnalysisFallback("AI response was invalid. Default values applied.")

	raw, err := s.provider.Complete(ctx, llm.TaskAnalysisPrompt(input.Title, input.Description))
	if err != nil {
		log.Error().Err(err).Msg("task analysis completion failed")
		analysis = taskAnalysisFallback("Fallback applied due to AI error")
	} else if extracted := llm.ExtractJSON(raw); extracted != "" {
		var parsed struct {
			SuggestedPriority string `json:"suggestedPriority"`
			EstimatedTime     string `json:"estimatedTime"`
			Note              string `json:"note"`
		}
		if jsonErr := json.Unmarshal([]byte(extracted), &parsed); jsonErr == nil && parsed.SuggestedPriority != "" {
			analysis.SuggestedPriority = parsed.SuggestedPriority
			analysis.EstimatedTime = parsed.EstimatedTime
			analysis.Note = parsed.Note
		} else {
			log.Error().Str("raw", raw).Msg("task analysis JSON parse failed")
		}
	}

	analysis.DueDate = dueDateFromEstimate(analysis.EstimatedTime, time.Now())

	if input.TaskID != "" {
		taskID, idErr := primitive.ObjectIDFromHex(input.TaskID)
		if idErr != nil {
			return nil, domain.InvalidInput("invalid task id")
		}
		task, findErr := s.taskRepo.FindOne(ctx, policy.TaskWriteFilter(actor, taskID))
		if findErr != nil {
			return nil, fmt.Errorf("failed to get task: %w", findErr)
		}
		if task == nil {
			return nil, domain.NotFound("task not found")
		}

		task.Priority = analysis.SuggestedPriority
		task.DueDate = &analysis.DueDate
		task.AIInsights = &domain.AIInsights{
			SuggestedPriority: analysis.SuggestedPriority,
			EstimatedTime:     analysis.EstimatedTime,
			Note:              analysis.Note,
		}
		if updateErr := s.taskRepo.Update(ctx, task); updateErr != nil {
			return nil, fmt.Errorf("failed to persist analysis: %w", updateErr)
		}
	}

	return &analysis, nil
}

// Stats aggregates dashboard counts over the actor's visible tasks.
func (s *TaskService) Stats(ctx context.Context, actor domain.Actor) (*domain.TaskStats, error) {
	base := policy.TaskListFilter(actor)

	total, err := s.taskRepo.Count(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	byStatus := func(status string) (int64, error) {
		filter := bson.M{"status": status}
		for k, v := range base {
			filter[k] = v
		}
		return s.taskRepo.Count(ctx, filter)
	}

	pending, err := byStatus(domain.TaskStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending tasks: %w", err)
	}
	inProgress, err := byStatus(domain.TaskStatusInProgress)
	if err != nil {
		return nil, fmt.Errorf("failed to count in-progress tasks: %w", err)
	}
	completed, err := byStatus(domain.TaskStatusDone)
	if err != nil {
		return nil, fmt.Errorf("failed to count done tasks: %w", err)
	}

	percentage := 0
	if total > 0 {
		percentage = int(float64(completed)/float64(total)*100 + 0.5)
	}

	return &domain.TaskStats{
		TotalTasks:           total,
		PendingTasks:         pending,
		InProgressTasks:      inProgress,
		CompletedTasks:       completed,
		CompletionPercentage: percentage,
	}, nil
}

// SendOverdueReminders is the daily sweep: every open task past its due date
// produces a reminder email to its assignee, unless the assignee opted out.
func (s *TaskService) SendOverdueReminders(ctx context.Context) error {
	now := time.Now()
	tasks, err := s.taskRepo.FindOverdueOpen(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to find overdue tasks: %w", err)
	}

	log.Info().Int("count", len(tasks)).Msg("overdue tasks found")

	for _, task := range tasks {
		user, err := s.userRepo.GetByID(ctx, task.AssignedTo)
		if err != nil {
			log.Error().Err(err).Str("task", task.ID.Hex()).Msg("failed to resolve assignee")
			continue
		}
		if user == nil || !user.EmailNotifications {
			continue
		}

		dueDate := ""
		if task.DueDate != nil {
			dueDate = task.DueDate.Format("Mon Jan 2 2006")
		}
		err = s.mailer.Send(mail.Message{
			To:      user.Email,
			Subject: "Task Overdue Reminder",
			HTML: fmt.Sprintf(`<h2>Hi %s,</h2>
<p>You have an <b>overdue task</b>:</p>
<ul>
  <li><b>%s</b></li>
  <li>Status: %s</li>
  <li>Due Date: %s</li>
</ul>
<p>Please complete it as soon as possible.</p>`,
				user.Name, task.Title, strings.ReplaceAll(task.Status, "_", " "), dueDate),
		})
		if err != nil {
			log.Error().Err(err).Str("task", task.ID.Hex()).Msg("failed to send overdue reminder")
		}
	}
	return nil
}
