package ai

import (
	"fmt"

	"github.com/reyarovenko/iMeal/pkg/models"
)

const kbjuSystemContext = "You are a precise nutrition calculator. Always respond with valid JSON only."

func kbjuPrompt(description, lang string) string {
	if lang == "uk" {
		return fmt.Sprintf(`Ти - професійний дієтолог та експерт з підрахунку калорій. Проаналізуй цей опис їжі та дай точну оцінку КБЖУ.

Опис їжі: %s

ВАЖЛИВО:
- Враховуй спосіб приготування (варена, смажена, сира тощо)
- Враховуй вказані ваги продуктів
- Якщо вага не вказана, використовуй стандартні порції
- Будь максимально точним в розрахунках

Дай відповідь ТІЛЬКИ в форматі JSON:
{
    "calories": число,
    "protein": число,
    "fat": число,
    "carbs": число,
    "analysis": "короткий коментар українською"
}

Числа мають бути цілими.`, description)
	}
	return fmt.Sprintf(`You are a professional nutritionist and calorie counting expert. Analyze this food description and provide accurate KBJU estimation.

Food description: %s

IMPORTANT:
- Consider cooking method (boiled, fried, raw, etc.)
- Consider specified weights of products
- If weight not specified, use standard portions
- Be as accurate as possible in calculations

Respond ONLY in JSON format:
{
    "calories": number,
    "protein": number,
    "fat": number,
    "carbs": number,
    "analysis": "brief comment in English"
}

Numbers should be integers.`, description)
}

func advicePrompt(targetCalories int, todaySummary, lang string) string {
	if lang == "uk" {
		return fmt.Sprintf(`Ти - професійний дієтолог. Проаналізуй що користувач з'їв СЬОГОДНІ і дай персональні рекомендації.

ЦІЛЬОВИЙ КАЛОРАЖ: %d ккал/день

%s

На основі того, що користувач з'їв СЬОГОДНІ, дай конкретні рекомендації:

1. 📊 АНАЛІЗ СЬОГОДНІШНЬОГО ХАРЧУВАННЯ:
   - Чи достатньо калорій на сьогодні?
   - Баланс білків/жирів/вуглеводів
   - Що добре в сьогоднішньому раціоні?

2. 🎯 ЩО РОБИТИ ДАЛІ СЬОГОДНІ:
   - Чи потрібно ще щось з'їсти сьогодні?
   - Конкретні страви/продукти на вечерю
   - Скільки ще калорій можна/треба з'їсти

3. 💡 ПОРАДИ НА ЗАВТРА:
   - Що покращити в завтрашньому харчуванні
   - Конкретні продукти

Будь конкретним та практичним. Враховуй українську кухню. Відповідай українською.`, targetCalories, todaySummary)
	}
	return fmt.Sprintf(`You are a professional nutritionist. Analyze what the user ate TODAY and provide personalized recommendations.

TARGET CALORIES: %d kcal/day

%s

Based on what the user ate TODAY, provide specific recommendations:

1. 📊 TODAY'S NUTRITION ANALYSIS:
   - Are there enough calories for today?
   - Protein/fat/carb balance
   - What's good about today's diet?

2. 🎯 WHAT TO DO NEXT TODAY:
   - Should they eat something else today?
   - Specific meals/foods for dinner
   - How many more calories can/should they eat

3. 💡 ADVICE FOR TOMORROW:
   - What to improve in tomorrow's nutrition
   - Specific products

Be specific and practical. Respond in English.`, targetCalories, todaySummary)
}

// basicAdvice is the no-AI fallback: the daily target plus a hint that the
// full recommendations need the completion service.
func basicAdvice(profile models.Profile, lang string) string {
	if lang == "uk" {
		return fmt.Sprintf(`💡 Базові рекомендації:

🎯 Ваша денна норма: %d ккал

❌ Для персональних рекомендацій потрібен OpenAI API
💡 Налаштуйте OPENAI_API_KEY в .env файлі`, profile.Calories.Maintain)
	}
	return fmt.Sprintf(`💡 Basic recommendations:

🎯 Your daily target: %d kcal

❌ For personalized recommendations OpenAI API is required
💡 Set OPENAI_API_KEY in .env file`, profile.Calories.Maintain)
}

// noMealsAdvice is returned when a profile exists but nothing was logged
// today, so there is no intake to analyze yet.
func noMealsAdvice(profile models.Profile, lang string) string {
	if lang == "uk" {
		return fmt.Sprintf(`💡 Базові рекомендації:

🎯 Ваша денна норма: %d ккал

📝 Сьогодні ви ще нічого не їли.

Рекомендую почати день з:
• Збалансованого сніданку (300-400 ккал)
• Додайте білки та складні вуглеводи
• Не забувайте про воду

Додайте перші страви через Аналітика, і я дам персональні рекомендації на основі вашого фактичного харчування!`, profile.Calories.Maintain)
	}
	return fmt.Sprintf(`💡 Basic recommendations:

🎯 Your daily target: %d kcal

📝 You haven't eaten anything today yet.

I recommend starting the day with:
• Balanced breakfast (300-400 kcal)
• Add proteins and complex carbs
• Don't forget about water

Add your first meals through Analyst, and I'll give personalized recommendations based on your actual nutrition!`, profile.Calories.Maintain)
}
