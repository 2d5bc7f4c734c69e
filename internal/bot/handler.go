package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/reyarovenko/iMeal/internal/agent"
	"github.com/reyarovenko/iMeal/internal/database"
	"github.com/reyarovenko/iMeal/pkg/locales"
	"github.com/reyarovenko/iMeal/pkg/models"
)

// Keyboard is a reply keyboard to attach to an outgoing message. A nil
// Keyboard keeps whatever the user already has.
type Keyboard struct {
	Rows      [][]string
	SingleUse bool
}

// Transport delivers replies to the user. The Telegram implementation
// lives in telegram.go; tests plug in a recorder.
type Transport interface {
	Reply(userID int64, text string, kb *Keyboard) error
}

// Handler is the dialogue state machine. One HandleText call processes one
// incoming text message end to end.
type Handler struct {
	sessions  *SessionStore
	coord     *agent.Coordinator
	prefs     *database.DB
	transport Transport
	logger    *zap.Logger
}

func NewHandler(sessions *SessionStore, coord *agent.Coordinator, prefs *database.DB, transport Transport, logger *zap.Logger) *Handler {
	return &Handler{
		sessions:  sessions,
		coord:     coord,
		prefs:     prefs,
		transport: transport,
		logger:    logger,
	}
}

const maxButtonRunes = 50

// HandleText drives the dialogue for one incoming message. It never
// panics outward: any panic is logged, the flow state is dropped and the
// user gets a generic error instead of silence.
func (h *Handler) HandleText(ctx context.Context, userID int64, text string) {
	sess := h.sessions.Get(userID)

	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("handler: panic recovered",
				zap.Int64("user_id", userID), zap.Any("panic", r))
			sess.ResetFlow()
			loc := locales.Get(sess.Lang)
			h.reply(userID, loc.Errors.Generic, nil)
		}
	}()

	text = strings.TrimSpace(text)

	if text == "/start" {
		h.sessions.Reset(userID)
		h.reply(userID, locales.LanguagePrompt, languageKeyboard())
		return
	}

	// A language button switches the language from anywhere.
	if code, ok := LanguageFor(text); ok {
		sess.Lang = code
		sess.ResetFlow()
		if err := h.prefs.SaveLanguage(userID, code); err != nil {
			h.logger.Warn("handler: save language", zap.Int64("user_id", userID), zap.Error(err))
		}
		loc := locales.Get(code)
		h.reply(userID, loc.LanguageSet, nil)
		h.showMenu(userID, loc.MainMenu)
		return
	}

	if sess.Lang == "" {
		if saved, err := h.prefs.Language(userID); err == nil && saved != "" {
			sess.Lang = saved
		} else {
			h.reply(userID, locales.LanguagePrompt, languageKeyboard())
			return
		}
	}

	loc := locales.Get(sess.Lang)

	// Menu buttons pre-empt any in-progress flow: pressing one from the
	// middle of a flow abandons that flow and its scratch data.
	if intent := ClassifyMenu(text); intent != IntentNone {
		h.handleMenu(ctx, sess, loc, intent)
		return
	}

	switch sess.State {
	case StateAwaitingMealType:
		h.handleMealType(sess, loc, text)
	case StateAwaitingFoodText:
		h.handleFoodText(ctx, sess, loc, text)
	case StateAwaitingDeleteChoice:
		h.handleDeleteChoice(ctx, sess, loc, text)
	case StateCalcAge, StateCalcWeight, StateCalcHeight, StateCalcGender, StateCalcActivity:
		h.handleCalcStep(ctx, sess, loc, text)
	default:
		h.reply(sess.UserID, loc.Errors.Unknown, nil)
		h.showMenu(sess.UserID, loc.MainMenu)
	}
}

func (h *Handler) handleMenu(ctx context.Context, sess *Session, loc *locales.Locale, intent Intent) {
	wasDeleteChoice := sess.State == StateAwaitingDeleteChoice
	sess.ResetFlow()

	switch intent {
	case IntentAnalystMenu:
		h.showMenu(sess.UserID, loc.AnalystMenu)

	case IntentDietitianMenu:
		h.showMenu(sess.UserID, loc.DietitianMenu)

	case IntentAddFood:
		sess.State = StateAwaitingMealType
		h.reply(sess.UserID, loc.Prompts.ChooseMealType, mealTypeKeyboard(loc))

	case IntentDeleteFood:
		res := h.coord.RouteRequest(ctx, sess.UserID, agent.ActionDeleteMeal, agent.Request{Lang: sess.Lang})
		h.sendResult(sess, loc, res)

	case IntentDailySummary:
		res := h.coord.RouteRequest(ctx, sess.UserID, agent.ActionDailySummary, agent.Request{Lang: sess.Lang})
		h.sendResult(sess, loc, res)

	case IntentCalcCalories:
		sess.State = StateCalcAge
		h.reply(sess.UserID, loc.Prompts.EnterAge, backKeyboard(loc))

	case IntentRecommendations:
		if !h.allowAI(sess.UserID, loc) {
			return
		}
		res := h.coord.RouteRequest(ctx, sess.UserID, agent.ActionGetRecommendations, agent.Request{Lang: sess.Lang})
		h.sendResult(sess, loc, res)

	case IntentShowProfile:
		res := h.coord.RouteRequest(ctx, sess.UserID, agent.ActionShowProfile, agent.Request{Lang: sess.Lang})
		h.sendResult(sess, loc, res)

	case IntentBack:
		if wasDeleteChoice {
			h.showMenu(sess.UserID, loc.AnalystMenu)
			return
		}
		h.showMenu(sess.UserID, loc.MainMenu)
	}
}

func (h *Handler) handleMealType(sess *Session, loc *locales.Locale, text string) {
	mealType, ok := MealTypeFor(loc, text)
	if !ok {
		h.reply(sess.UserID, loc.Errors.SelectMealType, mealTypeKeyboard(loc))
		return
	}
	sess.MealType = mealType
	sess.State = StateAwaitingFoodText
	h.reply(sess.UserID, loc.Prompts.DescribeFood, backKeyboard(loc))
}

func (h *Handler) handleFoodText(ctx context.Context, sess *Session, loc *locales.Locale, text string) {
	description := sess.MealType + ": " + text
	sess.ResetFlow()

	if !h.allowAI(sess.UserID, loc) {
		return
	}

	res := h.coord.RouteRequest(ctx, sess.UserID, agent.ActionAddMeal, agent.Request{
		MealDesc: description,
		Lang:     sess.Lang,
	})
	h.sendResult(sess, loc, res)
	h.showMenu(sess.UserID, loc.AnalystMenu)
}

func (h *Handler) handleDeleteChoice(ctx context.Context, sess *Session, loc *locales.Locale, text string) {
	for _, offer := range sess.DeleteOffers {
		label := truncate(offer.Entry.Description, maxButtonRunes)
		if strings.Contains(text, label) &&
			strings.Contains(text, strconv.Itoa(offer.Entry.Calories)) {
			position := offer.Position
			sess.ResetFlow()
			res := h.coord.RouteRequest(ctx, sess.UserID, agent.ActionConfirmDelete, agent.Request{
				Position: position,
				Lang:     sess.Lang,
			})
			h.sendResult(sess, loc, res)
			h.showMenu(sess.UserID, loc.AnalystMenu)
			return
		}
	}
	h.reply(sess.UserID, loc.Errors.MealNotFound, nil)
}

func (h *Handler) handleCalcStep(ctx context.Context, sess *Session, loc *locales.Locale, text string) {
	switch sess.State {
	case StateCalcAge:
		age, err := strconv.Atoi(text)
		if err != nil || age <= 0 {
			h.reply(sess.UserID, fmt.Sprintf(loc.Errors.NotNumber, "25"), nil)
			return
		}
		sess.Calc.Age = age
		sess.State = StateCalcWeight
		h.reply(sess.UserID, loc.Prompts.EnterWeight, nil)

	case StateCalcWeight:
		weight, err := strconv.ParseFloat(strings.Replace(text, ",", ".", 1), 64)
		if err != nil || weight <= 0 {
			h.reply(sess.UserID, fmt.Sprintf(loc.Errors.NotNumber, "70.5"), nil)
			return
		}
		sess.Calc.Weight = weight
		sess.State = StateCalcHeight
		h.reply(sess.UserID, loc.Prompts.EnterHeight, nil)

	case StateCalcHeight:
		height, err := strconv.Atoi(text)
		if err != nil || height <= 0 {
			h.reply(sess.UserID, fmt.Sprintf(loc.Errors.NotNumber, "175"), nil)
			return
		}
		sess.Calc.Height = height
		sess.State = StateCalcGender
		h.reply(sess.UserID, loc.Prompts.ChooseGender, genderKeyboard(loc))

	case StateCalcGender:
		gender, ok := GenderFor(loc, text)
		if !ok {
			h.reply(sess.UserID, loc.Errors.SelectGender, genderKeyboard(loc))
			return
		}
		sess.Calc.Gender = gender
		sess.State = StateCalcActivity
		h.reply(sess.UserID, loc.Prompts.ChooseActivity, activityKeyboard(loc))

	case StateCalcActivity:
		coefficient, ok := ActivityFor(loc, text)
		if !ok {
			h.reply(sess.UserID, loc.Errors.SelectActivity, activityKeyboard(loc))
			return
		}
		data := models.Biometrics{
			Age:                 sess.Calc.Age,
			Gender:              sess.Calc.Gender,
			Weight:              sess.Calc.Weight,
			Height:              sess.Calc.Height,
			ActivityCoefficient: coefficient,
		}
		sess.ResetFlow()
		res := h.coord.RouteRequest(ctx, sess.UserID, agent.ActionCalculateCalories, agent.Request{
			Biometrics: &data,
			Lang:       sess.Lang,
		})
		h.sendResult(sess, loc, res)
		h.showMenu(sess.UserID, loc.DietitianMenu)
	}
}

// sendResult renders an agent result into user-facing text. DeleteListResult
// is the one result that also advances the dialogue state: it arms the
// delete-choice step with the offer snapshot.
func (h *Handler) sendResult(sess *Session, loc *locales.Locale, res agent.Result) {
	switch r := res.(type) {
	case agent.AddMealResult:
		if r.Status != agent.StatusSuccess {
			h.reply(sess.UserID, r.Message, nil)
			return
		}
		h.reply(sess.UserID, fmt.Sprintf(loc.Results.MealAdded,
			r.KBJU.Calories, r.KBJU.Protein, r.KBJU.Fat, r.KBJU.Carbs, r.KBJU.Analysis), nil)

	case agent.DailySummaryResult:
		if r.Status != agent.StatusSuccess {
			h.reply(sess.UserID, r.Message, nil)
			return
		}
		h.reply(sess.UserID, r.Summary, nil)

	case agent.DeleteListResult:
		if r.Status != agent.StatusSuccess {
			h.reply(sess.UserID, r.Message, nil)
			return
		}
		sess.State = StateAwaitingDeleteChoice
		sess.DeleteOffers = r.Offers
		h.reply(sess.UserID, loc.Prompts.ChooseDelete, offerKeyboard(loc, r))

	case agent.ConfirmDeleteResult:
		h.reply(sess.UserID, r.Message, nil)

	case agent.CalculateResult:
		if r.Status != agent.StatusSuccess {
			h.reply(sess.UserID, loc.Errors.BadInput, nil)
			return
		}
		h.reply(sess.UserID, fmt.Sprintf(loc.Results.CalcTemplate,
			r.Data.Age, r.Data.Weight, r.Data.Height, loc.GenderName(r.Data.Gender),
			r.Calories.BMR, r.Calories.Maintain, r.Calories.Lose, r.Calories.Gain), nil)

	case agent.RecommendationsResult:
		switch r.Status {
		case agent.StatusSuccess:
			h.reply(sess.UserID, r.Recommendations, nil)
		case agent.StatusNoProfile:
			h.reply(sess.UserID, loc.Results.NoProfile, nil)
		default:
			h.reply(sess.UserID, loc.Errors.Generic, nil)
		}

	case agent.ProfileResult:
		if r.Status != agent.StatusSuccess {
			h.reply(sess.UserID, loc.Results.NoProfile, nil)
			return
		}
		p := r.Profile
		h.reply(sess.UserID, fmt.Sprintf(loc.Results.ProfileTemplate,
			p.Age, p.Weight, p.Height, loc.GenderName(p.Gender),
			p.Calories.Maintain, p.Calories.Lose, p.Calories.Gain,
			p.UpdatedAt.Format("2006-01-02 15:04")), nil)

	default:
		h.reply(sess.UserID, loc.Errors.Unknown, nil)
	}
}

// allowAI gates AI-bound actions by the per-user rate limit. On a limiter
// failure the action is allowed; the limiter protects cost, not safety.
func (h *Handler) allowAI(userID int64, loc *locales.Locale) bool {
	ok, err := h.prefs.CheckRateLimit(userID)
	if err != nil {
		h.logger.Warn("handler: rate limit check", zap.Int64("user_id", userID), zap.Error(err))
		return true
	}
	if !ok {
		h.reply(userID, loc.Errors.RateLimited, nil)
	}
	return ok
}

func (h *Handler) showMenu(userID int64, screen locales.Screen) {
	h.reply(userID, screen.Text, &Keyboard{Rows: screen.Keyboard})
}

func (h *Handler) reply(userID int64, text string, kb *Keyboard) {
	if err := h.transport.Reply(userID, text, kb); err != nil {
		h.logger.Error("handler: reply failed", zap.Int64("user_id", userID), zap.Error(err))
	}
}

func languageKeyboard() *Keyboard {
	rows := make([][]string, 0, len(locales.LanguageButtons))
	// Fixed order regardless of map iteration.
	for _, label := range []string{"🇺🇦 Українська", "🇬🇧 English"} {
		rows = append(rows, []string{label})
	}
	return &Keyboard{Rows: rows, SingleUse: true}
}

func mealTypeKeyboard(loc *locales.Locale) *Keyboard {
	rows := make([][]string, 0, len(loc.MealTypes)/2+1)
	for i := 0; i < len(loc.MealTypes); i += 2 {
		end := i + 2
		if end > len(loc.MealTypes) {
			end = len(loc.MealTypes)
		}
		rows = append(rows, loc.MealTypes[i:end])
	}
	rows = append(rows, []string{loc.Buttons.Back})
	return &Keyboard{Rows: rows, SingleUse: true}
}

func genderKeyboard(loc *locales.Locale) *Keyboard {
	return &Keyboard{
		Rows:      [][]string{{loc.Genders.Male, loc.Genders.Female}},
		SingleUse: true,
	}
}

func activityKeyboard(loc *locales.Locale) *Keyboard {
	rows := make([][]string, len(loc.Activities))
	for i, a := range loc.Activities {
		rows[i] = []string{a.Label}
	}
	return &Keyboard{Rows: rows, SingleUse: true}
}

func backKeyboard(loc *locales.Locale) *Keyboard {
	return &Keyboard{Rows: [][]string{{loc.Buttons.Back}}, SingleUse: true}
}

func offerKeyboard(loc *locales.Locale, r agent.DeleteListResult) *Keyboard {
	rows := make([][]string, 0, len(r.Offers)+1)
	for _, offer := range r.Offers {
		label := fmt.Sprintf("%s (%d %s)",
			truncate(offer.Entry.Description, maxButtonRunes),
			offer.Entry.Calories, loc.Units.Kcal)
		rows = append(rows, []string{label})
	}
	rows = append(rows, []string{loc.Buttons.Back})
	return &Keyboard{Rows: rows, SingleUse: true}
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
