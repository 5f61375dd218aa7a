package openai

import (
	"fmt"

	"github.com/poiesic/agrivoice/ai"
)

const translationPromptTemplate = `You translate messages for farmers. %s

Output ONLY valid JSON of the form {"translation": "<translated text>"}. Do not include any preamble,
explanation, greeting, or acknowledgment. Start your response directly with the opening brace { and
end with the closing brace }.

Rules:
- Translate the complete message; do not summarize or answer it.
- Keep scheme names, numbers, units and product names exactly as written.
- If the message is already in %s, return it unchanged.

Example:
Input: "రైతులకు రుణం ఎలా లభిస్తుంది"
Output:
{"translation": "How do farmers get a loan"}`

// buildTranslationPrompt creates the system prompt for a language pair.
func buildTranslationPrompt(source, target string) string {
	targetName := ai.LanguageName(target)
	var direction string
	if source == "" || source == ai.AutoDetect {
		direction = fmt.Sprintf("Detect the language of the user's message and translate it into %s.", targetName)
	} else {
		direction = fmt.Sprintf("Translate the user's message from %s into %s.", ai.LanguageName(source), targetName)
	}
	return fmt.Sprintf(translationPromptTemplate, direction, targetName)
}
