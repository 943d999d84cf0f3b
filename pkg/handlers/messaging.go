package handlers

import (
	"context"
	"fmt"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
)

// MessagingKeywords route email work.
var MessagingKeywords = []string{"email", "send", "draft", "reply", "inbox", "communication"}

// Messaging drafts and sends email.
type Messaging struct {
	Keyword
	mailer ports.Mailer
}

// NewMessaging creates the messaging handler ("Email Agent").
func NewMessaging(opts ...Option) *Messaging {
	s := newSettings("Email Agent", "Manages email communications.", MessagingKeywords, opts)
	return &Messaging{Keyword: s.keyword(), mailer: s.mailer}
}

// Run summarizes the task. With a mailer attached and a recipient in the
// context, the task is delivered and the confirmation appended.
func (h *Messaging) Run(ctx context.Context, task string, tc domain.Context) (string, error) {
	outcome := "Processed email operation."

	to, ok := tc.GetString(domain.KeyRecipient)
	if h.mailer == nil || !ok {
		return h.Summary(task, tc, outcome), nil
	}

	subject, ok := tc.GetString(domain.KeySubject)
	if !ok {
		subject = task
	}

	confirmation, err := h.mailer.Send(ctx, domain.Email{To: to, Subject: subject, Body: task})
	if err != nil {
		return "", fmt.Errorf("send email to %s: %w", to, err)
	}
	return h.Summary(task, tc, fmt.Sprintf("%s %s.", outcome, confirmation)), nil
}
