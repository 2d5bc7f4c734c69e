package agent

import (
	"context"

	"go.uber.org/zap"

	"github.com/reyarovenko/iMeal/internal/bus"
	"github.com/reyarovenko/iMeal/pkg/models"
)

// Action names a user-facing operation the Coordinator can route.
type Action string

const (
	ActionAddMeal            Action = "add_meal"
	ActionDailySummary       Action = "daily_summary"
	ActionDeleteMeal         Action = "delete_meal"
	ActionConfirmDelete      Action = "confirm_delete"
	ActionCalculateCalories  Action = "calculate_calories"
	ActionGetRecommendations Action = "get_recommendations"
	ActionShowProfile        Action = "show_profile"
)

// Request carries the per-action payload. Only the fields the routed
// action reads are meaningful.
type Request struct {
	MealDesc   string
	Lang       string
	Position   int
	Biometrics *models.Biometrics
}

// Coordinator is the single entry point of the agent layer. Every user
// request passes through RouteRequest, which first lets both agents
// process their pending notifications and then dispatches the action to
// its owner.
type Coordinator struct {
	bus       *bus.Bus
	analyst   *Analyst
	dietitian *Dietitian
	logger    *zap.Logger
}

func NewCoordinator(b *bus.Bus, analyst *Analyst, dietitian *Dietitian, logger *zap.Logger) (*Coordinator, error) {
	if err := b.Register(AnalystID); err != nil {
		return nil, err
	}
	if err := b.Register(DietitianID); err != nil {
		return nil, err
	}
	return &Coordinator{bus: b, analyst: analyst, dietitian: dietitian, logger: logger}, nil
}

// RouteRequest drains both mailboxes, hands the pending notifications to
// their owners, then dispatches the action. Unknown actions yield
// UnknownActionResult, never a panic.
func (c *Coordinator) RouteRequest(ctx context.Context, userID int64, action Action, req Request) Result {
	c.deliverPending()

	c.logger.Debug("coordinator: route",
		zap.Int64("user_id", userID), zap.String("action", string(action)))

	switch action {
	case ActionAddMeal:
		return c.analyst.AddMeal(ctx, userID, req.MealDesc, req.Lang)
	case ActionDailySummary:
		return c.analyst.DailySummary(userID, req.Lang)
	case ActionDeleteMeal:
		return c.analyst.DeleteMeal(userID, req.Lang)
	case ActionConfirmDelete:
		return c.analyst.ConfirmDeleteMeal(userID, req.Position, req.Lang)
	case ActionCalculateCalories:
		if req.Biometrics == nil {
			return CalculateResult{Status: StatusError, Message: "missing biometric data"}
		}
		return c.dietitian.CalculateCalories(userID, *req.Biometrics)
	case ActionGetRecommendations:
		return c.dietitian.Recommendations(ctx, userID, req.Lang)
	case ActionShowProfile:
		return c.dietitian.ShowProfile(userID)
	default:
		c.logger.Warn("coordinator: unknown action",
			zap.Int64("user_id", userID), zap.String("action", string(action)))
		return UnknownActionResult{}
	}
}

// deliverPending flushes both mailboxes. A message an agent's send
// produced during this flush stays queued until the next request, which
// is how the nutrition-data round trip resolves over two requests.
func (c *Coordinator) deliverPending() {
	for _, msg := range c.bus.Drain(AnalystID) {
		c.analyst.HandleMessage(msg)
	}
	for _, msg := range c.bus.Drain(DietitianID) {
		c.dietitian.HandleMessage(msg)
	}
}
