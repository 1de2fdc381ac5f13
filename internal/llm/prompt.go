package llm

import (
	"fmt"

	"github.com/hyperjump/kotae/pkg/utils"
)

// DefaultSummaryMaxChars bounds how much of a document is sent for summarization.
const DefaultSummaryMaxChars = 8000

const systemPromptTemplate = "You are an Enterprise Knowledge Assistant. Answer questions based ONLY on the provided context from company documents. \n" +
	"If the answer cannot be found in the context, say so clearly. Always cite which document your answer comes from.%s\n" +
	"If no relevant information is found, politely inform the user that the information is not available in the uploaded documents."

var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"hi": "Hindi",
	"zh": "Chinese",
	"ja": "Japanese",
}

// LanguageName maps a language code to the name used in prompts. Unknown codes map to English.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return "English"
}

// SystemPrompt builds the answering instructions. Any language other than "en" adds a
// directive to respond in that language.
func SystemPrompt(language string) string {
	directive := ""
	if language != "en" {
		directive = fmt.Sprintf("\n\nIMPORTANT: Respond in %s.", LanguageName(language))
	}
	return fmt.Sprintf(systemPromptTemplate, directive)
}

// UserMessage carries the retrieved context followed by the question.
func UserMessage(contextText, query string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextText, query)
}

// SummaryPrompt asks for a 3-5 bullet summary of the first maxChars characters of content.
func SummaryPrompt(content string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultSummaryMaxChars
	}
	return "Please summarize this document in 3-5 bullet points:\n\n" + utils.HeadRunes(content, maxChars)
}
