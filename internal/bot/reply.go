package bot

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pogodka/weather-bot/internal/core/domain"
)

// Fixed reply texts. The transport-failure and city-not-found replies are
// deliberately the same message: the user gets one answer, the logs and
// metrics tell the two cases apart.
const (
	replyGreeting = "Привет! Я погодный бот 🌤\nВыбери действие:"
	replyUsage    = "Пожалуйста, укажи город после команды. Пример: /weather Moscow"
	replyAskCity  = "Напиши название города, чтобы узнать погоду."
	replyNotFound = "Не удалось найти информацию о погоде для этого города."

	replyHelp = "Доступные команды:\n" +
		"/weather <город> - узнать погоду в указанном городе\n" +
		"/start - показать главное меню"
)

// formatReport renders the weather reply for one city.
func formatReport(city string, r domain.WeatherReport) string {
	return fmt.Sprintf(
		"🌍 Город: %s\n"+
			"🌡 Температура: %.1f°C\n"+
			"🤔 Ощущается как: %.1f°C\n"+
			"🌤 Погода: %s\n"+
			"⛅ Иконка прогноза: %s\n",
		titleCase(city),
		r.Temperature,
		r.FeelsLike,
		capitalize(r.Description),
		r.IconID,
	)
}

// titleCase uppercases the first letter of every word ("nizhny novgorod" →
// "Nizhny Novgorod").
func titleCase(s string) string {
	return cases.Title(language.Und).String(s)
}

// capitalize uppercases the first rune and lowercases the rest, which is how
// the provider's all-lowercase descriptions are presented.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}
