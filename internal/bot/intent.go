package bot

import "github.com/reyarovenko/iMeal/pkg/locales"

// Intent is a recognized menu button press, language-independent. The
// handler dispatches on intents, never on raw button text.
type Intent int

const (
	IntentNone Intent = iota
	IntentAnalystMenu
	IntentDietitianMenu
	IntentAddFood
	IntentDeleteFood
	IntentDailySummary
	IntentCalcCalories
	IntentRecommendations
	IntentShowProfile
	IntentBack
)

// LanguageFor maps a language-selection button label to its locale code.
func LanguageFor(text string) (string, bool) {
	code, ok := locales.LanguageButtons[text]
	return code, ok
}

// ClassifyMenu matches the text against every locale's button labels, so a
// button pressed from a stale keyboard in another language still works.
func ClassifyMenu(text string) Intent {
	for _, loc := range locales.All() {
		b := loc.Buttons
		switch text {
		case b.Analyst:
			return IntentAnalystMenu
		case b.Dietitian:
			return IntentDietitianMenu
		case b.AddFood:
			return IntentAddFood
		case b.DeleteFood:
			return IntentDeleteFood
		case b.DailySummary:
			return IntentDailySummary
		case b.CalcCalories:
			return IntentCalcCalories
		case b.Recommendations:
			return IntentRecommendations
		case b.Profile:
			return IntentShowProfile
		case b.Back:
			return IntentBack
		}
	}
	return IntentNone
}

// MealTypeFor reports whether the text is a meal-type label of the locale.
func MealTypeFor(loc *locales.Locale, text string) (string, bool) {
	for _, mt := range loc.MealTypes {
		if text == mt {
			return mt, true
		}
	}
	return "", false
}

// GenderFor maps a gender button label to the stored gender code.
func GenderFor(loc *locales.Locale, text string) (string, bool) {
	switch text {
	case loc.Genders.Male:
		return "male", true
	case loc.Genders.Female:
		return "female", true
	}
	return "", false
}

// ActivityFor maps an activity button label to its coefficient.
func ActivityFor(loc *locales.Locale, text string) (float64, bool) {
	for _, a := range loc.Activities {
		if text == a.Label {
			return a.Coefficient, true
		}
	}
	return 0, false
}
