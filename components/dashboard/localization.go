package dashboard

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Locales with label translations.
const (
	LocaleArabic  = "ar"
	LocaleEnglish = "en"
)

// labels maps a label key to its per-locale text. "default" is used when the
// locale has no entry.
var labels = map[string]map[string]string{
	"total_users":        {"ar": "إجمالي المستخدمين", "default": "Total Users"},
	"active_drivers":     {"ar": "السائقين النشطين", "default": "Active Drivers"},
	"total_restaurants":  {"ar": "إجمالي المطاعم", "default": "Total Restaurants"},
	"revenue":            {"ar": "الإيرادات", "default": "Revenue"},
	"today_rides":        {"ar": "رحلات اليوم", "default": "Today's Rides"},
	"today_orders":       {"ar": "طلبات اليوم", "default": "Today's Orders"},
	"pending_orders":     {"ar": "طلبات معلقة", "default": "Pending Orders"},
	"weekly_activity":    {"ar": "النشاط الأسبوعي", "default": "Weekly Activity"},
	"monthly_revenue":    {"ar": "الإيرادات الشهرية", "default": "Monthly Revenue"},
	"rides":              {"ar": "الرحلات", "default": "Rides"},
	"orders":             {"ar": "الطلبات", "default": "Orders"},
	"currency_sar_label": {"ar": "ر.س", "default": "SAR"},
	"dashboard":          {"ar": "لوحة التحكم", "default": "Dashboard"},
	"users":              {"ar": "المستخدمين", "default": "Users"},
	"drivers":            {"ar": "السائقين", "default": "Drivers"},
	"restaurants":        {"ar": "المطاعم", "default": "Restaurants"},
	"promotions":         {"ar": "العروض", "default": "Promotions"},
	"settings":           {"ar": "الإعدادات", "default": "Settings"},
	"chat":               {"ar": "المحادثات", "default": "Messages"},
	"status":             {"ar": "الحالة", "default": "Status"},
}

// Label returns the translation of key for locale, falling back to the
// default text and finally to the key itself.
func Label(key, locale string) string {
	return ResolveLocalizedValue(labels[key], locale, key)
}

// ResolveLocalizedValue selects the best translation for the locale.
// Region tags (`ar-sa`) fall back to their base language (`ar`).
func ResolveLocalizedValue(values map[string]string, locale, fallback string) string {
	if len(values) == 0 {
		return fallback
	}
	for _, candidate := range localeCandidates(locale) {
		for key, value := range values {
			if strings.EqualFold(key, candidate) && value != "" {
				return value
			}
		}
	}
	return fallback
}

func localeCandidates(locale string) []string {
	locale = normalizeLocale(locale)
	if locale == "" {
		return []string{"default"}
	}
	candidates := []string{locale}
	if idx := strings.Index(locale, "-"); idx > 0 {
		candidates = append(candidates, locale[:idx])
	}
	return append(candidates, "default")
}

func normalizeLocale(locale string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "_", "-"))
}

// printerFor returns a number printer for the locale's base language.
func printerFor(locale string) *message.Printer {
	tag, err := language.Parse(normalizeLocale(locale))
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

// currencyLabel is the display label for a currency code.
func currencyLabel(code, locale string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || code == "SAR" {
		return Label("currency_sar_label", locale)
	}
	return code
}
