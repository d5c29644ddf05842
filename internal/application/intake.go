package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ericfisherdev/anonbox/internal/domain/model"
	"github.com/ericfisherdev/anonbox/internal/domain/port/driven"
)

// Content length bounds, in characters.
const (
	MinContentLength = 10
	MaxContentLength = 300
)

// IntakeService validates anonymous submissions and writes them through to
// the recipient's inbox. Nothing about the sender reaches this layer.
type IntakeService struct {
	directory *Directory
	gate      *AcceptanceGate
	inbox     driven.InboxStore
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

// NewIntakeService creates an IntakeService.
func NewIntakeService(directory *Directory, gate *AcceptanceGate, inbox driven.InboxStore, logger *slog.Logger) *IntakeService {
	return &IntakeService{
		directory: directory,
		gate:      gate,
		inbox:     inbox,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// ValidateContent checks the content bounds. Whitespace-only content counts
// as empty.
func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrInvalidContent
	}
	n := utf8.RuneCountInString(content)
	if n < MinContentLength || n > MaxContentLength {
		return ErrInvalidContent
	}
	return nil
}

// Submit runs the intake pipeline. The first failing step short-circuits:
// content validation, recipient resolution, the acceptance gate, then a
// conditional append that re-checks acceptance at write time. A nil return
// means exactly one message was appended.
func (s *IntakeService) Submit(ctx context.Context, handle, content string) error {
	if err := ValidateContent(content); err != nil {
		return err
	}

	recipient, err := s.directory.Resolve(ctx, handle)
	if err != nil {
		if errors.Is(err, ErrStorageFailure) {
			s.logger.Error("intake resolve failed", "error", err)
		}
		return err
	}

	if !s.gate.Admits(*recipient) {
		return ErrNotAccepting
	}

	msg := model.Message{
		ID:        s.newID(),
		AccountID: recipient.AccountID,
		Content:   content,
		CreatedAt: s.now(),
	}

	if err := s.inbox.Append(ctx, msg); err != nil {
		if errors.Is(err, driven.ErrRecipientClosed) {
			return ErrNotAccepting
		}
		s.logger.Error("intake append failed", "account_id", recipient.AccountID, "error", err)
		return storageFailure("append message", err)
	}

	return nil
}
