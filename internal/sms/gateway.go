// Package sms abstracts outbound text-message delivery for invite flows.
package sms

import (
	"context"
	"fmt"

	"youbet/internal/middleware"
)

// Gateway sends text messages to phone numbers.
type Gateway interface {
	SendText(ctx context.Context, phone, body string) error
}

// LogGateway is the default Gateway. It logs outbound messages instead of
// delivering them, which is what every non-production environment wants.
type LogGateway struct{}

// NewLogGateway returns a Gateway that writes messages to the structured log.
func NewLogGateway() *LogGateway {
	return &LogGateway{}
}

// SendText records the outbound message without delivering it.
func (g *LogGateway) SendText(ctx context.Context, phone, body string) error {
	middleware.SMSInvitesSent.Inc()
	middleware.Logger.InfoContext(ctx, "sms send",
		"phone", phone,
		"body", body,
	)
	return nil
}

// InviteBody builds the invite text sent to phone numbers that do not belong
// to a registered user yet.
func InviteBody(inviterName, inviteBaseURL string, requestID uint) string {
	return fmt.Sprintf(
		"Hey! %s invited you to YouBet, the sports betting community. Tap here to join: %s/%d",
		inviterName, inviteBaseURL, requestID,
	)
}
