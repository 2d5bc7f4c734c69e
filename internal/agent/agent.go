// Package agent hosts the two cooperating agents of the bot — the Analyst
// (meal logging and daily aggregation) and the Dietitian (calorie profiles
// and advice) — plus the Coordinator that routes dialogue requests to them.
// The agents never call each other directly; they exchange notifications
// over the message bus.
package agent

import (
	"go.uber.org/zap"

	"github.com/reyarovenko/iMeal/internal/bus"
)

const (
	AnalystID   = "analyst"
	DietitianID = "dietitian"
)

// base carries what both agents share: an identity, the bus handle and a
// logger.
type base struct {
	id     string
	bus    *bus.Bus
	logger *zap.Logger
}

// send publishes a notification to another agent. Bus failures are logged
// and swallowed: notifications are best-effort side effects, the user
// request that produced them must not fail because of them.
func (b *base) send(receiver string, content bus.Content) {
	if err := b.bus.Send(b.id, receiver, content); err != nil {
		b.logger.Warn("agent: bus send failed",
			zap.String("sender", b.id),
			zap.String("receiver", receiver),
			zap.String("type", string(content.Type)),
			zap.Error(err))
	}
}
