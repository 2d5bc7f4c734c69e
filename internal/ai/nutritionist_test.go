package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/reyarovenko/iMeal/pkg/models"
)

type fakeCompleter struct {
	reply string
	err   error

	lastPrompt string
	lastOpts   Options
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string, opts Options) (string, error) {
	f.lastPrompt = prompt
	f.lastOpts = opts
	return f.reply, f.err
}

func TestParseKBJUCleanObject(t *testing.T) {
	kbju, err := ParseKBJU(`{"calories": 450, "protein": 30, "fat": 15, "carbs": 40, "analysis": "ok"}`, "en")
	require.NoError(t, err)
	assert.Equal(t, models.KBJU{Calories: 450, Protein: 30, Fat: 15, Carbs: 40, Analysis: "ok"}, kbju)
}

func TestParseKBJUWrappedInProse(t *testing.T) {
	raw := "Sure! Here is the estimation:\n```json\n{\"calories\": 320, \"protein\": 12, \"fat\": 8, \"carbs\": 50, \"analysis\": \"light meal\"}\n```\nHope this helps."
	kbju, err := ParseKBJU(raw, "en")
	require.NoError(t, err)
	assert.Equal(t, 320, kbju.Calories)
	assert.Equal(t, "light meal", kbju.Analysis)
}

func TestParseKBJUNumericStrings(t *testing.T) {
	kbju, err := ParseKBJU(`{"calories": "450", "protein": "30.5"}`, "en")
	require.NoError(t, err)
	assert.Equal(t, 450, kbju.Calories)
	assert.Equal(t, 30, kbju.Protein)
}

func TestParseKBJUMissingMacrosDefaultToZero(t *testing.T) {
	kbju, err := ParseKBJU(`{"calories": 200}`, "uk")
	require.NoError(t, err)
	assert.Equal(t, 200, kbju.Calories)
	assert.Zero(t, kbju.Protein)
	assert.Zero(t, kbju.Fat)
	assert.Zero(t, kbju.Carbs)
	assert.Equal(t, "Розрахунок виконано", kbju.Analysis)
}

func TestParseKBJUDefaultAnalysisByLanguage(t *testing.T) {
	kbju, err := ParseKBJU(`{"calories": 200}`, "en")
	require.NoError(t, err)
	assert.Equal(t, "Calculation completed", kbju.Analysis)
}

func TestParseKBJUMissingCalories(t *testing.T) {
	_, err := ParseKBJU(`{"protein": 30}`, "en")
	assert.Error(t, err)
}

func TestParseKBJUNoJSON(t *testing.T) {
	_, err := ParseKBJU("I cannot estimate that.", "en")
	assert.Error(t, err)
}

func TestEstimateKBJUWithoutCompleter(t *testing.T) {
	n := NewNutritionist(nil, zap.NewNop())

	_, err := n.EstimateKBJU(context.Background(), "Обід: борщ", "uk")
	require.Error(t, err)
	var serviceErr *ServiceError
	assert.ErrorAs(t, err, &serviceErr)
}

func TestEstimateKBJUUsesLowTemperature(t *testing.T) {
	f := &fakeCompleter{reply: `{"calories": 450, "protein": 20, "fat": 10, "carbs": 30, "analysis": "ok"}`}
	n := NewNutritionist(f, zap.NewNop())

	kbju, err := n.EstimateKBJU(context.Background(), "Обід: борщ", "uk")
	require.NoError(t, err)
	assert.Equal(t, 450, kbju.Calories)
	assert.InDelta(t, 0.3, f.lastOpts.Temperature, 1e-9)
	assert.Equal(t, 300, f.lastOpts.MaxTokens)
	assert.Contains(t, f.lastPrompt, "Обід: борщ")
}

func TestAdviseWithoutCompleterFallsBack(t *testing.T) {
	n := NewNutritionist(nil, zap.NewNop())
	profile := models.Profile{Calories: models.Calories{Maintain: 2009}}

	text, err := n.Advise(context.Background(), profile, "anything", "en")
	require.NoError(t, err)
	assert.Contains(t, text, "2009")
}

func TestAdviseEmptySummarySkipsModel(t *testing.T) {
	f := &fakeCompleter{reply: "should not be used"}
	n := NewNutritionist(f, zap.NewNop())
	profile := models.Profile{Calories: models.Calories{Maintain: 1800}}

	text, err := n.Advise(context.Background(), profile, "", "en")
	require.NoError(t, err)
	assert.Empty(t, f.lastPrompt)
	assert.Contains(t, text, "1800")
}

func TestAdviseModelFailureFallsBack(t *testing.T) {
	f := &fakeCompleter{err: errors.New("quota exceeded")}
	n := NewNutritionist(f, zap.NewNop())
	profile := models.Profile{Calories: models.Calories{Maintain: 2100}}

	text, err := n.Advise(context.Background(), profile, "ate soup", "en")
	require.NoError(t, err)
	assert.Contains(t, text, "2100")
}

func TestAdviseUsesTargetCalories(t *testing.T) {
	f := &fakeCompleter{reply: "  eat more greens  "}
	n := NewNutritionist(f, zap.NewNop())
	profile := models.Profile{Calories: models.Calories{Maintain: 2009}}

	text, err := n.Advise(context.Background(), profile, "ate soup", "en")
	require.NoError(t, err)
	assert.Equal(t, "eat more greens", text)
	assert.Contains(t, f.lastPrompt, "2009")
	assert.Contains(t, f.lastPrompt, "ate soup")
	assert.InDelta(t, 0.7, f.lastOpts.Temperature, 1e-9)
	assert.Equal(t, 800, f.lastOpts.MaxTokens)
}
