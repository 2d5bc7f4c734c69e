// Package bus is the in-process notification channel between the agents.
// Delivery is pull-based: published messages accumulate in a per-agent
// mailbox until the owner drains it. Draining is at-most-once and
// non-replayable.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/reyarovenko/iMeal/pkg/models"
)

type MessageType string

const (
	MealAdded            MessageType = "meal_added"
	HighCalorieAlert     MessageType = "high_calorie_alert"
	AnalyzeDay           MessageType = "analyze_day"
	MealDeleted          MessageType = "meal_deleted"
	RequestNutritionData MessageType = "request_nutrition_data"
	NutritionData        MessageType = "nutrition_data"
)

// Content is the tagged payload of an agent message: the type tag plus
// exactly one populated data field.
type Content struct {
	Type    MessageType           `json:"type"`
	Meal    *MealAddedData        `json:"meal_added,omitempty"`
	Alert   *HighCalorieData      `json:"high_calorie_alert,omitempty"`
	Day     *AnalyzeDayData       `json:"analyze_day,omitempty"`
	Deleted *MealDeletedData      `json:"meal_deleted,omitempty"`
	Request *NutritionRequestData `json:"request_nutrition_data,omitempty"`
	Pattern *NutritionPatternData `json:"nutrition_data,omitempty"`
}

type MealAddedData struct {
	UserID     int64       `json:"user_id"`
	Meal       string      `json:"meal"`
	KBJU       models.KBJU `json:"kbju"`
	Assessment string      `json:"assessment"`
}

type HighCalorieData struct {
	UserID   int64  `json:"user_id"`
	Calories int    `json:"calories"`
	Meal     string `json:"meal"`
}

type AnalyzeDayData struct {
	UserID        int64          `json:"user_id"`
	Entries       []models.Entry `json:"entries"`
	TotalCalories int            `json:"total_calories"`
	Lang          string         `json:"lang"`
}

type MealDeletedData struct {
	UserID  int64        `json:"user_id"`
	Deleted models.Entry `json:"deleted_entry"`
}

type NutritionRequestData struct {
	UserID int64 `json:"user_id"`
}

type NutritionPatternData struct {
	UserID  int64                   `json:"user_id"`
	Pattern models.NutritionPattern `json:"pattern"`
}

// AgentMessage is one inter-agent notification.
type AgentMessage struct {
	Sender   string    `json:"sender"`
	Receiver string    `json:"receiver"`
	Content  Content   `json:"content"`
	SentAt   time.Time `json:"sent_at"`
}

type mailbox struct {
	mu    sync.Mutex
	queue []AgentMessage
}

// Bus routes messages between registered agents over a watermill gochannel
// pub/sub, one topic per agent. The pub/sub is configured to block Send
// until the mailbox goroutine has queued the message, so a Send followed by
// a Drain of the same receiver always observes the message.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger *zap.Logger

	mu        sync.Mutex
	mailboxes map[string]*mailbox
}

func New(logger *zap.Logger) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			BlockPublishUntilSubscriberAck: true,
		}, watermill.NopLogger{}),
		logger:    logger,
		mailboxes: make(map[string]*mailbox),
	}
}

func topic(agentID string) string {
	return "agent." + agentID
}

// Register creates the mailbox for an agent and starts its delivery
// goroutine. Messages sent to an unregistered agent are dropped.
func (b *Bus) Register(agentID string) error {
	msgs, err := b.pubsub.Subscribe(context.Background(), topic(agentID))
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", agentID, err)
	}

	mb := &mailbox{}
	b.mu.Lock()
	b.mailboxes[agentID] = mb
	b.mu.Unlock()

	go func() {
		for msg := range msgs {
			var am AgentMessage
			if err := json.Unmarshal(msg.Payload, &am); err != nil {
				b.logger.Warn("bus: dropping malformed message",
					zap.String("receiver", agentID), zap.Error(err))
				msg.Ack()
				continue
			}
			mb.mu.Lock()
			mb.queue = append(mb.queue, am)
			mb.mu.Unlock()
			msg.Ack()
		}
	}()
	return nil
}

// Send appends a message to the receiver's mailbox. It does not block on
// the receiver doing anything with it.
func (b *Bus) Send(sender, receiver string, content Content) error {
	am := AgentMessage{
		Sender:   sender,
		Receiver: receiver,
		Content:  content,
		SentAt:   time.Now(),
	}
	payload, err := json.Marshal(am)
	if err != nil {
		return fmt.Errorf("marshal agent message: %w", err)
	}
	return b.pubsub.Publish(topic(receiver), message.NewMessage(uuid.NewString(), payload))
}

// Drain atomically removes and returns all queued messages for the
// receiver, in FIFO order. An empty or unknown mailbox yields nil.
func (b *Bus) Drain(receiver string) []AgentMessage {
	b.mu.Lock()
	mb := b.mailboxes[receiver]
	b.mu.Unlock()
	if mb == nil {
		return nil
	}

	mb.mu.Lock()
	queue := mb.queue
	mb.queue = nil
	mb.mu.Unlock()
	return queue
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}
