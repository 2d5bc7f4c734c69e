package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/reyarovenko/iMeal/internal/bus"
	"github.com/reyarovenko/iMeal/internal/storage"
	"github.com/reyarovenko/iMeal/pkg/locales"
	"github.com/reyarovenko/iMeal/pkg/models"
)

// Estimator produces a KBJU estimate for a free-text meal description.
type Estimator interface {
	EstimateKBJU(ctx context.Context, description, lang string) (models.KBJU, error)
}

const (
	// A single meal above this publishes a high_calorie_alert.
	highCalorieAlertThreshold = 800
	// Tri-level assessment bounds for the meal_added notification.
	lowCalorieBound  = 200
	highCalorieBound = 600
)

const (
	assessmentLow    = "low_calorie"
	assessmentNormal = "normal"
	assessmentHigh   = "high_calorie"
)

// Analyst owns meal logging and daily aggregation. It keeps a per-user
// rolling pattern of meal calories in memory for the process lifetime.
type Analyst struct {
	base
	entries   *storage.EntryStore
	estimator Estimator

	mu       sync.Mutex
	patterns map[int64]*models.NutritionPattern
}

func NewAnalyst(b *bus.Bus, entries *storage.EntryStore, estimator Estimator, logger *zap.Logger) *Analyst {
	return &Analyst{
		base:      base{id: AnalystID, bus: b, logger: logger},
		entries:   entries,
		estimator: estimator,
		patterns:  make(map[int64]*models.NutritionPattern),
	}
}

// AddMeal estimates the described meal and appends it to the entry log. A
// failed estimate returns an error result and writes nothing. On success
// the Dietitian is always notified with meal_added, and additionally with
// high_calorie_alert when the meal crosses the alert threshold.
func (a *Analyst) AddMeal(ctx context.Context, userID int64, description, lang string) AddMealResult {
	loc := locales.Get(lang)

	kbju, err := a.estimator.EstimateKBJU(ctx, description, lang)
	if err != nil {
		a.logger.Warn("analyst: estimate failed",
			zap.Int64("user_id", userID), zap.Error(err))
		return AddMealResult{Status: StatusError, Message: loc.Errors.EstimateFailed}
	}

	now := time.Now()
	entry := models.Entry{
		Date:        now.Format(models.DateLayout),
		Description: description,
		Calories:    kbju.Calories,
		Protein:     kbju.Protein,
		Fat:         kbju.Fat,
		Carbs:       kbju.Carbs,
		Timestamp:   now,
	}
	if err := a.entries.Append(entry); err != nil {
		a.logger.Error("analyst: append entry", zap.Int64("user_id", userID), zap.Error(err))
		return AddMealResult{Status: StatusError, Message: loc.Errors.SaveFailed}
	}

	a.recordPattern(userID, kbju.Calories)

	if kbju.Calories > highCalorieAlertThreshold {
		a.send(DietitianID, bus.Content{
			Type: bus.HighCalorieAlert,
			Alert: &bus.HighCalorieData{
				UserID:   userID,
				Calories: kbju.Calories,
				Meal:     description,
			},
		})
	}
	a.send(DietitianID, bus.Content{
		Type: bus.MealAdded,
		Meal: &bus.MealAddedData{
			UserID:     userID,
			Meal:       description,
			KBJU:       kbju,
			Assessment: assessMeal(kbju.Calories),
		},
	})

	return AddMealResult{Status: StatusSuccess, KBJU: kbju}
}

// DailySummary aggregates today's entries and notifies the Dietitian that
// the day was reviewed.
func (a *Analyst) DailySummary(userID int64, lang string) DailySummaryResult {
	loc := locales.Get(lang)

	positioned := a.entries.ListForDate(time.Now().Format(models.DateLayout))
	if len(positioned) == 0 {
		return DailySummaryResult{Status: StatusNoData, Message: loc.Results.NoData}
	}

	entries := make([]models.Entry, len(positioned))
	totalCalories := 0
	for i, p := range positioned {
		entries[i] = p.Entry
		totalCalories += p.Entry.Calories
	}

	a.send(DietitianID, bus.Content{
		Type: bus.AnalyzeDay,
		Day: &bus.AnalyzeDayData{
			UserID:        userID,
			Entries:       entries,
			TotalCalories: totalCalories,
			Lang:          lang,
		},
	})

	return DailySummaryResult{
		Status:  StatusSuccess,
		Entries: entries,
		Summary: formatSummary(entries, loc),
	}
}

// DeleteMeal lists today's entries with their absolute store positions for
// the dialogue layer to offer. It deletes nothing itself; the offer list is
// a snapshot and positions may go stale if the store changes before the
// user picks one.
func (a *Analyst) DeleteMeal(userID int64, lang string) DeleteListResult {
	loc := locales.Get(lang)

	offers := a.entries.ListForDate(time.Now().Format(models.DateLayout))
	if len(offers) == 0 {
		return DeleteListResult{Status: StatusNoData, Message: loc.Results.NoData}
	}
	return DeleteListResult{Status: StatusSuccess, Offers: offers}
}

// ConfirmDeleteMeal performs the deletion at an absolute position and
// notifies the Dietitian. A stale or out-of-range position is an error
// result, not a crash.
func (a *Analyst) ConfirmDeleteMeal(userID int64, position int, lang string) ConfirmDeleteResult {
	loc := locales.Get(lang)

	deleted, err := a.entries.DeleteAt(position)
	if err != nil {
		a.logger.Error("analyst: delete entry",
			zap.Int64("user_id", userID), zap.Int("position", position), zap.Error(err))
		return ConfirmDeleteResult{Status: StatusError, Message: loc.Errors.DeleteFailed}
	}
	if deleted == nil {
		return ConfirmDeleteResult{Status: StatusError, Message: loc.Errors.DeleteFailed}
	}

	a.send(DietitianID, bus.Content{
		Type:    bus.MealDeleted,
		Deleted: &bus.MealDeletedData{UserID: userID, Deleted: *deleted},
	})

	return ConfirmDeleteResult{
		Status:  StatusSuccess,
		Deleted: deleted,
		Message: fmt.Sprintf(loc.Results.Deleted, deleted.Description),
	}
}

// HandleMessage processes notifications addressed to the Analyst. The only
// one it reacts to is the Dietitian's nutrition-data request, answered with
// the user's in-memory pattern.
func (a *Analyst) HandleMessage(msg bus.AgentMessage) {
	if msg.Content.Type != bus.RequestNutritionData || msg.Content.Request == nil {
		return
	}
	userID := msg.Content.Request.UserID
	a.send(DietitianID, bus.Content{
		Type: bus.NutritionData,
		Pattern: &bus.NutritionPatternData{
			UserID:  userID,
			Pattern: a.Pattern(userID),
		},
	})
}

// Pattern returns a copy of the user's rolling calorie pattern.
func (a *Analyst) Pattern(userID int64) models.NutritionPattern {
	a.mu.Lock()
	defer a.mu.Unlock()

	p := a.patterns[userID]
	if p == nil {
		return models.NutritionPattern{}
	}
	out := models.NutritionPattern{Meals: make([]models.MealSample, len(p.Meals))}
	copy(out.Meals, p.Meals)
	return out
}

func (a *Analyst) recordPattern(userID int64, calories int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	p := a.patterns[userID]
	if p == nil {
		p = &models.NutritionPattern{}
		a.patterns[userID] = p
	}
	p.Meals = append(p.Meals, models.MealSample{Calories: calories, Timestamp: time.Now()})
}

func assessMeal(calories int) string {
	switch {
	case calories < lowCalorieBound:
		return assessmentLow
	case calories > highCalorieBound:
		return assessmentHigh
	default:
		return assessmentNormal
	}
}

func formatSummary(entries []models.Entry, loc *locales.Locale) string {
	totalCalories, totalProtein, totalFat, totalCarbs := 0, 0, 0, 0
	for _, e := range entries {
		totalCalories += e.Calories
		totalProtein += e.Protein
		totalFat += e.Fat
		totalCarbs += e.Carbs
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(loc.Results.SummaryHeader,
		len(entries), totalCalories, totalProtein, totalFat, totalCarbs))
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf(loc.Results.SummaryLine, e.Description, e.Calories))
	}
	return sb.String()
}
