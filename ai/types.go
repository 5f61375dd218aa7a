package ai

// AutoDetect asks the translator to detect the source language.
const AutoDetect = "auto"

// WorkingLanguage is the language the embedding model works in.
// Questions are translated into it before embedding.
const WorkingLanguage = "en"

// LanguageNames maps the ISO 639-1 codes used by the assistant to the
// English language names given to LLM-backed services.
var LanguageNames = map[string]string{
	"en": "English",
	"te": "Telugu",
	"hi": "Hindi",
}

// LanguageName returns the English name for an ISO 639-1 code, or the code itself.
func LanguageName(code string) string {
	if name, ok := LanguageNames[code]; ok {
		return name
	}
	return code
}
