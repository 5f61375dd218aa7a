package weather

import (
	"fmt"
	"strconv"

	"github.com/poiesic/agrivoice/core"
)

// Templates take city, region, country, condition, temperature, humidity and
// wind speed in that order. Locales that omit region and country use explicit
// argument indexes.
var reportTemplates = core.LocalizedText{
	core.LocaleEnglish: "Weather in %[1]s, %[2]s, %[3]s:\nCondition: %[4]s\nTemperature: %[5]s°C\nHumidity: %[6]d%%\nWind Speed: %[7]s kph",
	core.LocaleTelugu:  "%[1]s లో వాతావరణ నివేదిక:\nపరిస్థితి: %[4]s\nఉష్ణోగ్రత: %[5]s°C\nతేమ: %[6]d%%\nగాలివేగం: %[7]s కి.మీ/గం",
	core.LocaleHindi:   "%[1]s में मौसम की जानकारी:\nस्थिति: %[4]s\nतापमान: %[5]s°C\nनमी: %[6]d%%\nहवा की गति: %[7]s किलोमीटर/घंटा",
}

var unavailableTemplates = core.LocalizedText{
	core.LocaleEnglish: "❌ Weather information not available for '%s'.",
	core.LocaleTelugu:  "❌ '%s' యొక్క వాతావరణాన్ని పొందలేకపోయాము.",
	core.LocaleHindi:   "❌ '%s' के मौसम की जानकारी प्राप्त नहीं हो सकी।",
}

// Format renders a report in the given locale.
func Format(r *Report, locale core.Locale) string {
	return fmt.Sprintf(reportTemplates.For(locale),
		r.City, r.Region, r.Country, r.Condition,
		formatNumber(r.TempC), r.Humidity, formatNumber(r.WindKPH))
}

// Unavailable renders the message shown when a lookup fails.
func Unavailable(location string, locale core.Locale) string {
	return fmt.Sprintf(unavailableTemplates.For(locale), location)
}

// formatNumber drops a trailing ".0" the way the service prints whole values.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
