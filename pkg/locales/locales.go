// Package locales contains all user-facing text of the bot, one embedded
// JSON table per supported language.
package locales

import (
	_ "embed"
	"encoding/json"
	"log"
)

//go:embed uk.json
var ukJSON []byte

//go:embed en.json
var enJSON []byte

// LanguagePrompt is shown before a language is chosen, so it is bilingual
// and lives outside the per-language tables.
const LanguagePrompt = "⬇️ Виберіть мову / Choose language:"

// Language-selection button labels mapped to locale codes.
var LanguageButtons = map[string]string{
	"🇺🇦 Українська": "uk",
	"🇬🇧 English":    "en",
}

// Locale is one language's complete text table.
type Locale struct {
	Code          string     `json:"code"`
	LanguageSet   string     `json:"language_set"`
	MainMenu      Screen     `json:"main_menu"`
	AnalystMenu   Screen     `json:"analyst_menu"`
	DietitianMenu Screen     `json:"dietitian_menu"`
	Buttons       Buttons    `json:"buttons"`
	MealTypes     []string   `json:"meal_types"`
	Genders       Genders    `json:"genders"`
	Activities    []Activity `json:"activities"`
	Prompts       Prompts    `json:"prompts"`
	Errors        Errors     `json:"errors"`
	Results       Results    `json:"results"`
	Units         Units      `json:"units"`
}

// Screen is a menu: its text plus the reply-keyboard rows that go with it.
type Screen struct {
	Text     string     `json:"text"`
	Keyboard [][]string `json:"keyboard"`
}

type Buttons struct {
	Analyst         string `json:"analyst"`
	Dietitian       string `json:"dietitian"`
	AddFood         string `json:"add_food"`
	DeleteFood      string `json:"delete_food"`
	DailySummary    string `json:"daily_summary"`
	CalcCalories    string `json:"calc_calories"`
	Recommendations string `json:"recommendations"`
	Profile         string `json:"profile"`
	Back            string `json:"back"`
}

type Genders struct {
	Male   string `json:"male"`
	Female string `json:"female"`
}

// Activity pairs a display label with its Mifflin–St Jeor multiplier.
type Activity struct {
	Label       string  `json:"label"`
	Coefficient float64 `json:"coefficient"`
}

type Prompts struct {
	ChooseMealType string `json:"choose_meal_type"`
	DescribeFood   string `json:"describe_food"`
	ChooseDelete   string `json:"choose_delete"`
	EnterAge       string `json:"enter_age"`
	EnterWeight    string `json:"enter_weight"`
	EnterHeight    string `json:"enter_height"`
	ChooseGender   string `json:"choose_gender"`
	ChooseActivity string `json:"choose_activity"`
}

type Errors struct {
	NotNumber      string `json:"not_number"` // format: example value
	SelectMealType string `json:"select_meal_type"`
	SelectGender   string `json:"select_gender"`
	SelectActivity string `json:"select_activity"`
	MealNotFound   string `json:"meal_not_found"`
	EmptyList      string `json:"empty_list"`
	Unknown        string `json:"unknown"`
	Generic        string `json:"generic"`
	RateLimited    string `json:"rate_limited"`
	EstimateFailed string `json:"estimate_failed"`
	SaveFailed     string `json:"save_failed"`
	DeleteFailed   string `json:"delete_failed"`
	BadInput       string `json:"bad_input"`
}

type Results struct {
	MealAdded       string `json:"meal_added"`       // format: calories, protein, fat, carbs, analysis
	Deleted         string `json:"deleted"`          // format: description
	SummaryHeader   string `json:"summary_header"`   // format: meals, calories, protein, fat, carbs
	SummaryLine     string `json:"summary_line"`     // format: description, calories
	NoData          string `json:"no_data"`
	NoProfile       string `json:"no_profile"`
	ProfileTemplate string `json:"profile_template"` // format: age, weight, height, gender, maintain, lose, gain, updated
	CalcTemplate    string `json:"calc_template"`    // format: age, weight, height, gender, bmr, maintain, lose, gain
}

type Units struct {
	Kcal string `json:"kcal"`
}

var locales map[string]*Locale

func init() {
	locales = make(map[string]*Locale)
	for _, raw := range [][]byte{ukJSON, enJSON} {
		l := &Locale{}
		if err := json.Unmarshal(raw, l); err != nil {
			log.Fatalf("failed to parse embedded locale: %v", err)
		}
		locales[l.Code] = l
	}
}

// Get returns the table for a locale code, falling back to Ukrainian, the
// bot's default language.
func Get(lang string) *Locale {
	if l, ok := locales[lang]; ok {
		return l
	}
	return locales["uk"]
}

// All returns every loaded locale. Used by the intent classifier, which
// must recognize labels in any language.
func All() []*Locale {
	out := make([]*Locale, 0, len(locales))
	for _, l := range locales {
		out = append(out, l)
	}
	return out
}

// GenderName returns the display label for a stored gender code.
func (l *Locale) GenderName(code string) string {
	if code == "female" {
		return l.Genders.Female
	}
	return l.Genders.Male
}
