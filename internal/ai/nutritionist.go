package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/reyarovenko/iMeal/pkg/models"
)

// Nutritionist wraps a Completer with the two domain calls the agents make:
// KBJU estimation for the Analyst and advice generation for the Dietitian.
// A nil completer means no AI service is configured: estimation fails with
// a ServiceError, advice falls back to the static basic text.
type Nutritionist struct {
	completer Completer
	logger    *zap.Logger
}

func NewNutritionist(completer Completer, logger *zap.Logger) *Nutritionist {
	return &Nutritionist{completer: completer, logger: logger}
}

// EstimateKBJU asks the model for a strict-JSON nutrition estimate of a
// free-text meal description.
func (n *Nutritionist) EstimateKBJU(ctx context.Context, description, lang string) (models.KBJU, error) {
	if n.completer == nil {
		return models.KBJU{}, &ServiceError{Op: "estimator is not configured"}
	}

	raw, err := n.completer.Complete(ctx, kbjuPrompt(description, lang), Options{
		SystemContext: kbjuSystemContext,
		Temperature:   0.3, // low temperature for more stable numbers
		MaxTokens:     300,
	})
	if err != nil {
		return models.KBJU{}, err
	}

	kbju, err := ParseKBJU(raw, lang)
	if err != nil {
		n.logger.Warn("ai: unparseable estimate", zap.Error(err))
		return models.KBJU{}, &ServiceError{Op: "parse estimate", Err: err}
	}
	return kbju, nil
}

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// ParseKBJU extracts the KBJU JSON object from a model reply that may be
// wrapped in prose. Calories are required; missing macro fields default to
// zero, a missing analysis gets a stock comment in the request language.
func ParseKBJU(raw, lang string) (models.KBJU, error) {
	match := jsonObjectRe.FindString(raw)
	if match == "" {
		return models.KBJU{}, fmt.Errorf("no JSON object in reply")
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(match), &fields); err != nil {
		return models.KBJU{}, fmt.Errorf("decode estimate: %w", err)
	}

	calories, ok := numberField(fields, "calories")
	if !ok {
		return models.KBJU{}, fmt.Errorf("estimate has no calories field")
	}

	kbju := models.KBJU{Calories: calories}
	kbju.Protein, _ = numberField(fields, "protein")
	kbju.Fat, _ = numberField(fields, "fat")
	kbju.Carbs, _ = numberField(fields, "carbs")

	if analysis, ok := fields["analysis"].(string); ok && analysis != "" {
		kbju.Analysis = analysis
	} else if lang == "uk" {
		kbju.Analysis = "Розрахунок виконано"
	} else {
		kbju.Analysis = "Calculation completed"
	}
	return kbju, nil
}

func numberField(fields map[string]any, key string) (int, bool) {
	switch v := fields[key].(type) {
	case float64:
		return int(v), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return int(f), true
		}
	}
	return 0, false
}

// Advise generates the recommendation text for a profile. todaySummary is
// the pre-built description of today's meals; when it is empty the user has
// not eaten yet and a static text is returned without calling the model.
// A model failure also degrades to the basic text, as the original bot did.
func (n *Nutritionist) Advise(ctx context.Context, profile models.Profile, todaySummary, lang string) (string, error) {
	if n.completer == nil {
		return basicAdvice(profile, lang), nil
	}
	if todaySummary == "" {
		return noMealsAdvice(profile, lang), nil
	}

	text, err := n.completer.Complete(ctx, advicePrompt(profile.Calories.Maintain, todaySummary, lang), Options{
		Temperature: 0.7,
		MaxTokens:   800,
	})
	if err != nil {
		n.logger.Warn("ai: advice generation failed, using basic fallback", zap.Error(err))
		return basicAdvice(profile, lang), nil
	}
	return strings.TrimSpace(text), nil
}
