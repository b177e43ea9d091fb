package gateway

import "sort"

// Languages maps the language codes the backend accepts for identification,
// translation, and speech synthesis to their display names.
var Languages = map[string]string{
	"en":    "English",
	"hi":    "Hindi",
	"te":    "Telugu",
	"ta":    "Tamil",
	"kn":    "Kannada",
	"ml":    "Malayalam",
	"bn":    "Bengali",
	"gu":    "Gujarati",
	"mr":    "Marathi",
	"ur":    "Urdu",
	"fr":    "French",
	"es":    "Spanish",
	"de":    "German",
	"zh-cn": "Chinese",
	"ja":    "Japanese",
}

// SupportedLanguage reports whether code is one the backend understands.
func SupportedLanguage(code string) bool {
	_, ok := Languages[code]
	return ok
}

// LanguageLabel returns the display name for code, or the code itself when
// it is unknown.
func LanguageLabel(code string) string {
	if label, ok := Languages[code]; ok {
		return label
	}
	return code
}

// LanguageCodes returns the supported codes in sorted order.
func LanguageCodes() []string {
	codes := make([]string, 0, len(Languages))
	for code := range Languages {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
