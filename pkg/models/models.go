// Package models holds the data model shared between the stores, the agents
// and the dialogue layer. The JSON layout of Entry and Profile matches the
// files the bot keeps on disk.
package models

import "time"

// DateLayout is the calendar-date format used in entry records.
const DateLayout = "2006-01-02"

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// KBJU is the estimator output for one meal: calories, protein, fat and
// carbohydrates, plus a short free-text comment from the model.
type KBJU struct {
	Calories int    `json:"calories"`
	Protein  int    `json:"protein"`
	Fat      int    `json:"fat"`
	Carbs    int    `json:"carbs"`
	Analysis string `json:"analysis"`
}

// Entry is one logged meal.
type Entry struct {
	Date        string    `json:"date"` // DateLayout, local time
	Description string    `json:"description"`
	Calories    int       `json:"calories"`
	Protein     int       `json:"protein"`
	Fat         int       `json:"fat"`
	Carbs       int       `json:"carbs"`
	Timestamp   time.Time `json:"timestamp"`
}

// Biometrics is the user input of the calorie-calculation flow.
type Biometrics struct {
	Age                 int     `json:"age"`
	Gender              string  `json:"gender"`
	Weight              float64 `json:"weight"` // kg
	Height              int     `json:"height"` // cm
	ActivityCoefficient float64 `json:"activity_coefficient"`
}

// Calories are the daily targets derived from a Biometrics snapshot.
type Calories struct {
	BMR      int `json:"bmr"`
	Maintain int `json:"maintain"`
	Lose     int `json:"lose"`
	Gain     int `json:"gain"`
}

// Profile is the latest biometric snapshot of one user together with the
// derived calorie targets. Each write fully replaces the previous value.
type Profile struct {
	Age                 int       `json:"age"`
	Gender              string    `json:"gender"`
	Weight              float64   `json:"weight"`
	Height              int       `json:"height"`
	ActivityCoefficient float64   `json:"activity_coefficient"`
	Calories            Calories  `json:"calories"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// MealSample is one point of the Analyst's in-memory nutrition pattern.
type MealSample struct {
	Calories  int       `json:"calories"`
	Timestamp time.Time `json:"timestamp"`
}

// NutritionPattern is the rolling per-user history of meal calories the
// Analyst keeps for the process lifetime.
type NutritionPattern struct {
	Meals []MealSample `json:"meals"`
}

// AverageCalories returns the mean calories over the recorded meals,
// zero when the pattern is empty.
func (p NutritionPattern) AverageCalories() int {
	if len(p.Meals) == 0 {
		return 0
	}
	total := 0
	for _, m := range p.Meals {
		total += m.Calories
	}
	return total / len(p.Meals)
}
