package agent

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/reyarovenko/iMeal/internal/bus"
	"github.com/reyarovenko/iMeal/internal/storage"
	"github.com/reyarovenko/iMeal/pkg/models"
)

type fakeEstimator struct {
	kbju models.KBJU
	err  error
}

func (f *fakeEstimator) EstimateKBJU(_ context.Context, _, _ string) (models.KBJU, error) {
	return f.kbju, f.err
}

func newAnalystFixture(t *testing.T, estimator Estimator) (*Analyst, *storage.EntryStore, *bus.Bus) {
	t.Helper()
	b := bus.New(zap.NewNop())
	t.Cleanup(func() { b.Close() })
	require.NoError(t, b.Register(AnalystID))
	require.NoError(t, b.Register(DietitianID))

	entries := storage.NewEntryStore(filepath.Join(t.TempDir(), "nutrition_data.json"))
	return NewAnalyst(b, entries, estimator, zap.NewNop()), entries, b
}

func TestAddMealSuccess(t *testing.T) {
	est := &fakeEstimator{kbju: models.KBJU{Calories: 450, Protein: 30, Fat: 15, Carbs: 40, Analysis: "ok"}}
	analyst, entries, b := newAnalystFixture(t, est)

	res := analyst.AddMeal(context.Background(), 42, "🌞 Обід: борщ", "uk")
	require.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 450, res.KBJU.Calories)

	all := entries.All()
	require.Len(t, all, 1)
	assert.Equal(t, "🌞 Обід: борщ", all[0].Description)
	assert.Equal(t, time.Now().Format(models.DateLayout), all[0].Date)

	msgs := b.Drain(DietitianID)
	require.Len(t, msgs, 1)
	assert.Equal(t, bus.MealAdded, msgs[0].Content.Type)
	require.NotNil(t, msgs[0].Content.Meal)
	assert.Equal(t, int64(42), msgs[0].Content.Meal.UserID)
	assert.Equal(t, "normal", msgs[0].Content.Meal.Assessment)
}

func TestAddMealHighCalorieAlert(t *testing.T) {
	est := &fakeEstimator{kbju: models.KBJU{Calories: 950, Analysis: "heavy"}}
	analyst, _, b := newAnalystFixture(t, est)

	res := analyst.AddMeal(context.Background(), 42, "🌙 Вечеря: піца", "uk")
	require.Equal(t, StatusSuccess, res.Status)

	msgs := b.Drain(DietitianID)
	require.Len(t, msgs, 2)
	assert.Equal(t, bus.HighCalorieAlert, msgs[0].Content.Type)
	assert.Equal(t, 950, msgs[0].Content.Alert.Calories)
	assert.Equal(t, bus.MealAdded, msgs[1].Content.Type)
	assert.Equal(t, "high_calorie", msgs[1].Content.Meal.Assessment)
}

func TestAddMealEstimateFailure(t *testing.T) {
	est := &fakeEstimator{err: errors.New("service down")}
	analyst, entries, b := newAnalystFixture(t, est)

	res := analyst.AddMeal(context.Background(), 42, "🍪 Перекус: яблуко", "uk")
	assert.Equal(t, StatusError, res.Status)
	assert.NotEmpty(t, res.Message)

	assert.Empty(t, entries.All())
	assert.Empty(t, b.Drain(DietitianID))
}

func TestAssessMealTiers(t *testing.T) {
	cases := []struct {
		calories int
		want     string
	}{
		{150, "low_calorie"},
		{199, "low_calorie"},
		{200, "normal"},
		{600, "normal"},
		{601, "high_calorie"},
		{950, "high_calorie"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, assessMeal(tc.calories), "calories=%d", tc.calories)
	}
}

func TestDailySummaryNoData(t *testing.T) {
	analyst, _, b := newAnalystFixture(t, &fakeEstimator{})

	res := analyst.DailySummary(42, "uk")
	assert.Equal(t, StatusNoData, res.Status)
	assert.NotEmpty(t, res.Message)
	assert.Empty(t, b.Drain(DietitianID))
}

func TestDailySummaryAggregatesToday(t *testing.T) {
	est := &fakeEstimator{kbju: models.KBJU{Calories: 400, Protein: 20, Fat: 10, Carbs: 30, Analysis: "ok"}}
	analyst, entries, b := newAnalystFixture(t, est)

	// A stale entry from another day must not count.
	require.NoError(t, entries.Append(models.Entry{
		Date: "2000-01-01", Description: "old", Calories: 999,
	}))
	require.Equal(t, StatusSuccess, analyst.AddMeal(context.Background(), 42, "🌞 Обід: борщ", "uk").Status)
	require.Equal(t, StatusSuccess, analyst.AddMeal(context.Background(), 42, "🌙 Вечеря: салат", "uk").Status)
	b.Drain(DietitianID)

	res := analyst.DailySummary(42, "uk")
	require.Equal(t, StatusSuccess, res.Status)
	require.Len(t, res.Entries, 2)
	assert.Contains(t, res.Summary, "борщ")
	assert.Contains(t, res.Summary, "800")

	msgs := b.Drain(DietitianID)
	require.Len(t, msgs, 1)
	assert.Equal(t, bus.AnalyzeDay, msgs[0].Content.Type)
	assert.Equal(t, 800, msgs[0].Content.Day.TotalCalories)
}

func TestDeleteMealOffersSnapshot(t *testing.T) {
	est := &fakeEstimator{kbju: models.KBJU{Calories: 300, Analysis: "ok"}}
	analyst, _, b := newAnalystFixture(t, est)

	res := analyst.DeleteMeal(42, "uk")
	assert.Equal(t, StatusNoData, res.Status)

	require.Equal(t, StatusSuccess, analyst.AddMeal(context.Background(), 42, "🌅 Сніданок: каша", "uk").Status)
	b.Drain(DietitianID)

	res = analyst.DeleteMeal(42, "uk")
	require.Equal(t, StatusSuccess, res.Status)
	require.Len(t, res.Offers, 1)
	assert.Equal(t, "🌅 Сніданок: каша", res.Offers[0].Entry.Description)
	assert.Equal(t, 0, res.Offers[0].Position)
}

func TestConfirmDeleteMeal(t *testing.T) {
	est := &fakeEstimator{kbju: models.KBJU{Calories: 300, Analysis: "ok"}}
	analyst, entries, b := newAnalystFixture(t, est)

	require.Equal(t, StatusSuccess, analyst.AddMeal(context.Background(), 42, "🌅 Сніданок: каша", "uk").Status)
	b.Drain(DietitianID)

	res := analyst.ConfirmDeleteMeal(42, 0, "uk")
	require.Equal(t, StatusSuccess, res.Status)
	require.NotNil(t, res.Deleted)
	assert.Contains(t, res.Message, "каша")
	assert.Empty(t, entries.All())

	msgs := b.Drain(DietitianID)
	require.Len(t, msgs, 1)
	assert.Equal(t, bus.MealDeleted, msgs[0].Content.Type)
}

func TestConfirmDeleteMealStalePosition(t *testing.T) {
	analyst, _, b := newAnalystFixture(t, &fakeEstimator{})

	res := analyst.ConfirmDeleteMeal(42, 5, "uk")
	assert.Equal(t, StatusError, res.Status)
	assert.Empty(t, b.Drain(DietitianID))
}

func TestHandleMessageAnswersNutritionRequest(t *testing.T) {
	est := &fakeEstimator{kbju: models.KBJU{Calories: 500, Analysis: "ok"}}
	analyst, _, b := newAnalystFixture(t, est)

	require.Equal(t, StatusSuccess, analyst.AddMeal(context.Background(), 42, "🌞 Обід: плов", "uk").Status)
	b.Drain(DietitianID)

	analyst.HandleMessage(bus.AgentMessage{
		Sender:   DietitianID,
		Receiver: AnalystID,
		Content: bus.Content{
			Type:    bus.RequestNutritionData,
			Request: &bus.NutritionRequestData{UserID: 42},
		},
	})

	msgs := b.Drain(DietitianID)
	require.Len(t, msgs, 1)
	assert.Equal(t, bus.NutritionData, msgs[0].Content.Type)
	require.NotNil(t, msgs[0].Content.Pattern)
	require.Len(t, msgs[0].Content.Pattern.Pattern.Meals, 1)
	assert.Equal(t, 500, msgs[0].Content.Pattern.Pattern.Meals[0].Calories)
}

func TestPatternIsACopy(t *testing.T) {
	est := &fakeEstimator{kbju: models.KBJU{Calories: 500, Analysis: "ok"}}
	analyst, _, b := newAnalystFixture(t, est)

	require.Equal(t, StatusSuccess, analyst.AddMeal(context.Background(), 42, "🌞 Обід: плов", "uk").Status)
	b.Drain(DietitianID)

	p := analyst.Pattern(42)
	p.Meals[0].Calories = 1
	assert.Equal(t, 500, analyst.Pattern(42).Meals[0].Calories)
	assert.Equal(t, 500, analyst.Pattern(42).AverageCalories())
}
