// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package funnel

import (
	"strings"
	"unicode"
)

// minLanguageMatches is the number of distinct list words a text must
// contain for a language to be recognised.
const minLanguageMatches = 3

// Language identifies a recognised content language.
type Language string

const (
	Spanish Language = "es"
	English Language = "en"
	Unknown Language = ""
)

// spanishWords are common Spanish function words plus business vocabulary.
var spanishWords = wordSet(
	"el", "la", "los", "las", "de", "del", "que", "y", "en", "un", "una",
	"por", "para", "con", "es", "son", "pero", "como", "más", "muy", "lo",
	"se", "su", "sus", "al", "este", "esta", "hay", "también", "porque",
	"cuando", "nos", "mi", "tu", "sin", "sobre", "hoy",
	"empresa", "negocio", "equipo", "clientes", "ventas", "liderazgo",
	"éxito", "estrategia", "crecimiento", "aprendí",
)

// englishWords are common English function words plus business vocabulary.
var englishWords = wordSet(
	"the", "and", "of", "to", "in", "is", "are", "for", "with", "that",
	"this", "you", "your", "it", "on", "as", "be", "was", "we", "our",
	"they", "but", "not", "have", "from", "what", "how", "my", "today",
	"business", "team", "customers", "sales", "leadership", "growth",
	"strategy", "success", "learned",
)

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// languageMatches counts the distinct words of set that occur in text.
func languageMatches(tokens []string, set map[string]struct{}) int {
	found := make(map[string]struct{})
	for _, tok := range tokens {
		if _, ok := set[tok]; ok {
			found[tok] = struct{}{}
		}
	}
	return len(found)
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// DetectLanguage returns Spanish or English when the text matches at least
// three words of that list, preferring Spanish when both qualify. It is a
// bag-of-words check, not a general language detector: short or jargon-heavy
// posts may come back Unknown.
func DetectLanguage(text string) Language {
	tokens := tokenize(text)
	if languageMatches(tokens, spanishWords) >= minLanguageMatches {
		return Spanish
	}
	if languageMatches(tokens, englishWords) >= minLanguageMatches {
		return English
	}
	return Unknown
}

// ValidLanguage reports whether text is recognisably Spanish or English.
func ValidLanguage(text string) bool {
	return DetectLanguage(text) != Unknown
}
