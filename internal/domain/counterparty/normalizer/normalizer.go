// Package normalizer cleans raw counterparty strings from journal cells and
// bank statement memo fields into a display-oriented name. The tables below
// are ordered where order matters (stop phrases, organizational forms) and
// must not be rearranged.
package normalizer

import (
	"strings"
	"unicode"
)

// latinToCyrillic folds visually identical Latin letters to their Cyrillic
// homographs, both cases. Corrects names typed with a mixed keyboard layout.
var latinToCyrillic = map[rune]rune{
	'A': 'А', 'B': 'В', 'C': 'С', 'E': 'Е', 'H': 'Н', 'K': 'К',
	'M': 'М', 'O': 'О', 'P': 'Р', 'T': 'Т', 'X': 'Х', 'Y': 'У',
	'a': 'а', 'b': 'в', 'c': 'с', 'e': 'е', 'h': 'н', 'k': 'к',
	'm': 'м', 'o': 'о', 'p': 'р', 't': 'т', 'x': 'х', 'y': 'у',
}

// Single-token organizational forms, matched as whole tokens.
var orgForms = []string{
	"ооо", "оао", "зао", "пао", "ао", "ип", "нко", "ано", "тсж",
	"гбуз", "гуп", "муп", "фгуп", "гку", "ук",
	"llc", "ltd", "inc",
}

// Multi-word organizational forms, matched as substrings.
var orgPhrases = []string{
	"управляющая компания",
	"индивидуальный предприниматель",
}

// Organizational markers matched as substrings anywhere in a token; "банк"
// catches Сбербанк, Альфа-Банк and the like.
var orgSubstrings = []string{"банк"}

// Operation-type words that start a statement detail line rather than a name.
var operationWords = []string{
	"списание", "поступление", "оплата", "платеж", "платёж",
	"перевод", "возврат", "выдача", "зачисление", "комиссия",
}

// stopPhrases mark where free-text operation detail begins and the legal name
// ends. The string is truncated at the earliest occurrence; ties keep the
// earlier phrase in this list.
var stopPhrases = []string{
	"договор",
	"контракт",
	"счет №",
	"счёт №",
	"счет на",
	"сч.",
	"акт №",
	" акт ",
	"накладн",
	"предоплата",
	"оплата",
	"платеж",
	"платёж",
	"аванс",
	"за период",
	" от ",
}

// Clean normalizes a raw counterparty string to its display form. Returns ""
// for blank or unusable input. Idempotent: Clean(Clean(x)) == Clean(x).
func Clean(raw string) string {
	s := FoldHomographs(raw)
	s = pickLine(s)
	s = truncateAtStopPhrase(s)
	s = strings.TrimRight(s, " \t.,;:-–—\"'«»")
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if HasOrgMarker(s) {
		// Legal-entity names are kept in full.
		return s
	}
	// A person's name: surname, first name, patronymic at most.
	words := strings.Fields(s)
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, " ")
}

// FoldHomographs replaces Latin lookalike letters with their Cyrillic twins.
func FoldHomographs(s string) string {
	return strings.Map(func(r rune) rune {
		if c, ok := latinToCyrillic[r]; ok {
			return c
		}
		return r
	}, s)
}

// pickLine chooses the most informative line of a multi-line value: a line
// carrying an organizational form beats a line not starting with an
// operation-type word, which beats the first line.
func pickLine(s string) string {
	if !strings.ContainsAny(s, "\n\r") {
		return strings.TrimSpace(s)
	}
	var lines []string
	for _, line := range strings.FieldsFunc(s, func(r rune) bool { return r == '\n' || r == '\r' }) {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == 0 {
		return ""
	}
	for _, line := range lines {
		if HasOrgMarker(line) {
			return line
		}
	}
	for _, line := range lines {
		if !startsWithOperationWord(line) {
			return line
		}
	}
	return lines[0]
}

// truncateAtStopPhrase cuts the string at the earliest stop-phrase match.
// A match at position zero is ignored so a string that merely starts with a
// stop phrase is not erased.
func truncateAtStopPhrase(s string) string {
	lower := strings.ToLower(s)
	cut := -1
	for _, phrase := range stopPhrases {
		if idx := strings.Index(lower, phrase); idx > 0 && (cut == -1 || idx < cut) {
			cut = idx
		}
	}
	if cut > 0 {
		return s[:cut]
	}
	return s
}

func startsWithOperationWord(line string) bool {
	lower := strings.ToLower(line)
	for _, word := range operationWords {
		if strings.HasPrefix(lower, word) {
			return true
		}
	}
	return false
}

// HasOrgMarker reports whether the string names a legal entity rather than a
// person.
func HasOrgMarker(s string) bool {
	lower := strings.ToLower(s)
	for _, phrase := range orgPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	for _, tok := range tokenize(lower) {
		if IsOrgToken(tok) {
			return true
		}
	}
	return false
}

// IsOrgToken reports whether a single lowercased token is an organizational
// form marker.
func IsOrgToken(tok string) bool {
	tok = strings.Trim(tok, "\"'«».,()")
	for _, form := range orgForms {
		if tok == form {
			return true
		}
	}
	for _, sub := range orgSubstrings {
		if strings.Contains(tok, sub) {
			return true
		}
	}
	return false
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '"' && r != '«' && r != '»' && r != '\''
	})
}
