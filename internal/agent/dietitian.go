package agent

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/reyarovenko/iMeal/internal/bus"
	"github.com/reyarovenko/iMeal/internal/storage"
	"github.com/reyarovenko/iMeal/pkg/models"
)

// Advisor turns a profile and a summary of today's meals into advice text.
type Advisor interface {
	Advise(ctx context.Context, profile models.Profile, todaySummary, lang string) (string, error)
}

const (
	// Fixed daily deficit/surplus applied to the maintenance calories.
	targetAdjustment = 300
	// Daily-total bounds for the coarse analyze_day tier.
	overeatThreshold  = 2500
	undereatThreshold = 1200
)

// userStats is the Dietitian's in-memory side table for one user: meal
// counters, recent meals, alerts and the last pattern reply from the
// Analyst. Process lifetime only, never persisted.
type userStats struct {
	MealCount int
	LastMeals []mealRecord
	Alerts    []alertRecord
	Pattern   *models.NutritionPattern
	DayTier   string
}

type mealRecord struct {
	KBJU       models.KBJU
	Assessment string
	At         time.Time
}

type alertRecord struct {
	Calories int
	Meal     string
	At       time.Time
}

// Dietitian owns the biometric calorie calculation and advice generation.
type Dietitian struct {
	base
	profiles *storage.ProfileStore
	entries  *storage.EntryStore
	advisor  Advisor

	mu    sync.Mutex
	stats map[int64]*userStats
}

func NewDietitian(b *bus.Bus, profiles *storage.ProfileStore, entries *storage.EntryStore, advisor Advisor, logger *zap.Logger) *Dietitian {
	return &Dietitian{
		base:     base{id: DietitianID, bus: b, logger: logger},
		profiles: profiles,
		entries:  entries,
		advisor:  advisor,
		stats:    make(map[int64]*userStats),
	}
}

// CalculateCalories derives the daily targets from a biometric snapshot and
// upserts the user's profile.
func (d *Dietitian) CalculateCalories(userID int64, data models.Biometrics) CalculateResult {
	if data.Age <= 0 || data.Weight <= 0 || data.Height <= 0 ||
		data.ActivityCoefficient <= 0 ||
		(data.Gender != models.GenderMale && data.Gender != models.GenderFemale) {
		return CalculateResult{Status: StatusError, Message: "invalid biometric data"}
	}

	calories := DeriveCalories(data)
	profile := models.Profile{
		Age:                 data.Age,
		Gender:              data.Gender,
		Weight:              data.Weight,
		Height:              data.Height,
		ActivityCoefficient: data.ActivityCoefficient,
		Calories:            calories,
		UpdatedAt:           time.Now(),
	}
	if err := d.profiles.Put(userID, profile); err != nil {
		d.logger.Error("dietitian: save profile", zap.Int64("user_id", userID), zap.Error(err))
		return CalculateResult{Status: StatusError, Message: "failed to save profile"}
	}

	return CalculateResult{Status: StatusSuccess, Calories: calories, Data: data}
}

// DeriveCalories applies the Mifflin–St Jeor formula: 10w + 6.25h − 5a,
// plus 5 for men or minus 161 for women, times the activity coefficient
// for maintenance, with a fixed ±300 kcal for the lose/gain targets.
// Rounding is half away from zero.
func DeriveCalories(b models.Biometrics) models.Calories {
	bmr := 10*b.Weight + 6.25*float64(b.Height) - 5*float64(b.Age)
	if b.Gender == models.GenderMale {
		bmr += 5
	} else {
		bmr -= 161
	}
	total := bmr * b.ActivityCoefficient

	return models.Calories{
		BMR:      int(math.Round(bmr)),
		Maintain: int(math.Round(total)),
		Lose:     int(math.Round(total - targetAdjustment)),
		Gain:     int(math.Round(total + targetAdjustment)),
	}
}

// Recommendations generates advice for a user with an existing profile.
// It asks the Analyst for the accumulated pattern over the bus without
// awaiting the reply (the answer lands on a later drain and only enriches
// future side tables), and reads today's entries directly for the summary
// that actually feeds the advisor.
func (d *Dietitian) Recommendations(ctx context.Context, userID int64, lang string) RecommendationsResult {
	profile, ok := d.profiles.Get(userID)
	if !ok {
		return RecommendationsResult{Status: StatusNoProfile}
	}

	d.send(AnalystID, bus.Content{
		Type:    bus.RequestNutritionData,
		Request: &bus.NutritionRequestData{UserID: userID},
	})

	text, err := d.advisor.Advise(ctx, *profile, d.todayNutritionSummary(), lang)
	if err != nil {
		d.logger.Warn("dietitian: advice failed", zap.Int64("user_id", userID), zap.Error(err))
		return RecommendationsResult{Status: StatusError}
	}
	return RecommendationsResult{Status: StatusSuccess, Recommendations: text}
}

// todayNutritionSummary builds the advisor input from today's entries.
// Empty string when nothing was logged. Always English: it is model input,
// not user-facing text.
func (d *Dietitian) todayNutritionSummary() string {
	today := time.Now().Format(models.DateLayout)
	positioned := d.entries.ListForDate(today)
	if len(positioned) == 0 {
		return ""
	}

	totalCalories, totalProtein, totalFat, totalCarbs := 0, 0, 0, 0
	for _, p := range positioned {
		totalCalories += p.Entry.Calories
		totalProtein += p.Entry.Protein
		totalFat += p.Entry.Fat
		totalCarbs += p.Entry.Carbs
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `User's nutrition for TODAY (%s):

TOTAL FOR THE DAY:
• Calories: %d kcal
• Proteins: %d g
• Fats: %d g
• Carbs: %d g
• Meals: %d

DETAILED ALL DISHES TODAY:`,
		today, totalCalories, totalProtein, totalFat, totalCarbs, len(positioned))
	for i, p := range positioned {
		fmt.Fprintf(&sb, "\n%d. %s (%d kcal, %dg protein, %dg fat, %dg carbs)",
			i+1, p.Entry.Description, p.Entry.Calories, p.Entry.Protein, p.Entry.Fat, p.Entry.Carbs)
	}
	return sb.String()
}

// ShowProfile returns the stored profile, or no_profile.
func (d *Dietitian) ShowProfile(userID int64) ProfileResult {
	profile, ok := d.profiles.Get(userID)
	if !ok {
		return ProfileResult{Status: StatusNoProfile}
	}
	return ProfileResult{Status: StatusSuccess, Profile: profile}
}

// HandleMessage updates the in-memory side tables from Analyst
// notifications.
func (d *Dietitian) HandleMessage(msg bus.AgentMessage) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch msg.Content.Type {
	case bus.MealAdded:
		if msg.Content.Meal == nil {
			return
		}
		s := d.statsLocked(msg.Content.Meal.UserID)
		s.MealCount++
		s.LastMeals = append(s.LastMeals, mealRecord{
			KBJU:       msg.Content.Meal.KBJU,
			Assessment: msg.Content.Meal.Assessment,
			At:         msg.SentAt,
		})

	case bus.HighCalorieAlert:
		if msg.Content.Alert == nil {
			return
		}
		s := d.statsLocked(msg.Content.Alert.UserID)
		s.Alerts = append(s.Alerts, alertRecord{
			Calories: msg.Content.Alert.Calories,
			Meal:     msg.Content.Alert.Meal,
			At:       msg.SentAt,
		})

	case bus.AnalyzeDay:
		if msg.Content.Day == nil {
			return
		}
		s := d.statsLocked(msg.Content.Day.UserID)
		s.DayTier = dayTier(msg.Content.Day.TotalCalories)

	case bus.MealDeleted:
		if msg.Content.Deleted == nil {
			return
		}
		if s, ok := d.stats[msg.Content.Deleted.UserID]; ok {
			s.MealCount--
		}

	case bus.NutritionData:
		if msg.Content.Pattern == nil {
			return
		}
		s := d.statsLocked(msg.Content.Pattern.UserID)
		pattern := msg.Content.Pattern.Pattern
		s.Pattern = &pattern
	}
}

// Stats returns a copy of the side table for a user. Zero value when the
// user was never seen.
func (d *Dietitian) Stats(userID int64) (stats struct {
	MealCount  int
	AlertCount int
	DayTier    string
}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if s, ok := d.stats[userID]; ok {
		stats.MealCount = s.MealCount
		stats.AlertCount = len(s.Alerts)
		stats.DayTier = s.DayTier
	}
	return stats
}

func (d *Dietitian) statsLocked(userID int64) *userStats {
	s := d.stats[userID]
	if s == nil {
		s = &userStats{}
		d.stats[userID] = s
	}
	return s
}

// dayTier is the coarse daily-intake assessment. Kept internal; nothing
// surfaces it to the user yet.
func dayTier(totalCalories int) string {
	switch {
	case totalCalories > overeatThreshold:
		return "reduce_portions"
	case totalCalories < undereatThreshold:
		return "add_snack"
	default:
		return "balanced"
	}
}
