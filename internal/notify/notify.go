package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Udonxai/weak-link/internal/event"
	"github.com/Udonxai/weak-link/internal/group"
	"github.com/Udonxai/weak-link/pkg/kafka"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const AlertTitle = "Weak Link Alert"

var ErrMalformedMessage = errors.New("malformed break message")

type Notification struct {
	RecipientID uuid.UUID
	GroupID     uuid.UUID
	EventID     uuid.UUID
	Title       string
	Body        string
}

// Sender delivers one notification to one member.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

type SenderFunc func(ctx context.Context, n Notification) error

func (f SenderFunc) Send(ctx context.Context, n Notification) error {
	return f(ctx, n)
}

type Members interface {
	Members(ctx context.Context, groupID uuid.UUID) ([]group.Member, error)
}

// LogSender writes notifications to the log. Push delivery lives outside this
// repository.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, n Notification) error {
	s.logger.Info("Notification sent",
		zap.String("recipient_id", n.RecipientID.String()),
		zap.String("group_id", n.GroupID.String()),
		zap.String("event_id", n.EventID.String()),
		zap.String("title", n.Title),
		zap.String("body", n.Body),
	)
	return nil
}

type Dispatcher struct {
	members Members
	sender  Sender
	logger  *zap.Logger
}

func NewDispatcher(members Members, sender Sender, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		members: members,
		sender:  sender,
		logger:  logger,
	}
}

// BreakRecorded alerts every other member of the group. Returns how many
// notifications were delivered.
func (d *Dispatcher) BreakRecorded(ctx context.Context, msg event.BreakRecorded) (int, error) {
	members, err := d.members.Members(ctx, msg.GroupID)
	if err != nil {
		return 0, fmt.Errorf("failed to load members: %w", err)
	}

	username := ""
	for _, m := range members {
		if m.UserID == msg.UserID {
			username = m.DisplayName()
			break
		}
	}
	if username == "" {
		username = group.Member{UserID: msg.UserID}.DisplayName()
	}

	body := fmt.Sprintf("%s opened %s", username, msg.AppName)

	sent := 0
	var errs []error
	for _, m := range members {
		if m.UserID == msg.UserID {
			continue
		}
		n := Notification{
			RecipientID: m.UserID,
			GroupID:     msg.GroupID,
			EventID:     msg.EventID,
			Title:       AlertTitle,
			Body:        body,
		}
		if err := d.sender.Send(ctx, n); err != nil {
			d.logger.Warn("Failed to send notification",
				zap.String("recipient_id", m.UserID.String()),
				zap.Error(err),
			)
			errs = append(errs, err)
			continue
		}
		sent++
	}

	return sent, errors.Join(errs...)
}

// Handler adapts the dispatcher to the breaks topic consumer. Messages of
// other types are skipped.
func (d *Dispatcher) Handler() kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		if msg.MessageType != "" && msg.MessageType != event.MessageTypeBreakRecorded {
			d.logger.Debug("Skipping message", zap.String("message_type", msg.MessageType))
			return nil
		}

		var rec event.BreakRecorded
		if err := json.Unmarshal(msg.Value, &rec); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		if rec.GroupID == uuid.Nil || rec.UserID == uuid.Nil {
			return fmt.Errorf("%w: missing ids", ErrMalformedMessage)
		}

		sent, err := d.BreakRecorded(ctx, rec)
		d.logger.Debug("Break alert dispatched",
			zap.String("event_id", rec.EventID.String()),
			zap.Int("sent", sent),
			zap.Int64("offset", msg.Offset),
		)
		return err
	}
}
