// Package resolver matches raw transaction counterparties against the
// dictionary built from all loaded reference entries. The dictionary is
// rebuilt from scratch whenever any source changes; it is never persisted or
// updated incrementally.
package resolver

import (
	"sort"
	"strings"
	"unicode"

	"github.com/vloginova/finledger/internal/domain/counterparty/normalizer"
	"github.com/vloginova/finledger/internal/domain/ledger"
)

// NotInDictionary is the report-visible sentinel for a counterparty that a
// loaded dictionary does not know. A data-quality signal, not an error.
const NotInDictionary = "Нет в справочнике"

// Connective words dropped from token signatures.
var signatureStopWords = map[string]bool{
	"и": true, "в": true, "на": true, "по": true, "для": true,
	"от": true, "из": true, "за": true, "с": true,
}

// Dictionary holds the derived lookup structures over all known counterparty
// reference entries. Every key maps to the first encountered display name;
// later duplicates are ignored.
type Dictionary struct {
	exact     map[string]string // normalized key
	noPrefix  map[string]string // leading org form stripped
	noOrg     map[string]string // every org token stripped
	signature map[string]string // sorted filtered token set
	hasRefs   bool
}

// Build constructs the dictionary from the reference entries of every ready
// source, in source load order. First-write-wins at every lookup level.
func Build(sources [][]ledger.CounterpartyRef) *Dictionary {
	d := &Dictionary{
		exact:     make(map[string]string),
		noPrefix:  make(map[string]string),
		noOrg:     make(map[string]string),
		signature: make(map[string]string),
	}
	for _, refs := range sources {
		for _, ref := range refs {
			display := strings.TrimSpace(ref.Name)
			if display == "" {
				continue
			}
			d.hasRefs = true

			norm := NormalizeKey(display)
			insertIfAbsent(d.exact, norm, display)
			insertIfAbsent(d.noPrefix, StripOrgPrefix(norm), display)
			noOrg := StripOrgTokens(norm)
			insertIfAbsent(d.noOrg, noOrg, display)
			insertIfAbsent(d.signature, TokenSignature(noOrg), display)
		}
	}
	return d
}

// HasReferences reports whether any counterparty reference entry exists at
// all across the loaded sources.
func (d *Dictionary) HasReferences() bool {
	return d.hasRefs
}

// Resolve maps a transaction's raw counterparty to its canonical display
// name. Empty input resolves to ""; with no dictionary loaded the cleaned
// value is returned as a best-effort display; otherwise a miss at all four
// levels yields NotInDictionary.
func (d *Dictionary) Resolve(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	cleaned := normalizer.Clean(raw)
	norm := NormalizeKey(cleaned)
	noPrefix := StripOrgPrefix(norm)
	noOrg := StripOrgTokens(norm)

	for _, lookup := range []struct {
		m   map[string]string
		key string
	}{
		{d.exact, norm},
		{d.noPrefix, noPrefix},
		{d.noOrg, noOrg},
	} {
		if lookup.key == "" {
			continue
		}
		if display, ok := lookup.m[lookup.key]; ok {
			return display
		}
	}

	sigSource := noOrg
	if sigSource == "" {
		sigSource = norm
	}
	if sig := TokenSignature(sigSource); sig != "" {
		if display, ok := d.signature[sig]; ok {
			return display
		}
	}

	if !d.hasRefs {
		return cleaned
	}
	return NotInDictionary
}

// NormalizeKey folds homographs, lowercases, strips quotes and punctuation
// and collapses whitespace.
func NormalizeKey(s string) string {
	s = normalizer.FoldHomographs(s)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "ё", "е")
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return r
		default:
			return ' '
		}
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// StripOrgPrefix drops a leading organizational-form token from a normalized
// key.
func StripOrgPrefix(norm string) string {
	tokens := strings.Fields(norm)
	if len(tokens) > 1 && normalizer.IsOrgToken(tokens[0]) {
		return strings.Join(tokens[1:], " ")
	}
	return norm
}

// StripOrgTokens removes every organizational-form token from a normalized
// key, wherever it appears.
func StripOrgTokens(norm string) string {
	tokens := strings.Fields(norm)
	kept := tokens[:0]
	for _, tok := range tokens {
		if !normalizer.IsOrgToken(tok) {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

// TokenSignature builds an order-independent key: lowercase alphabetic tokens
// of length >= 2, organizational forms and connectives removed, sorted and
// joined.
func TokenSignature(norm string) string {
	var tokens []string
	for _, tok := range strings.Fields(norm) {
		if len([]rune(tok)) < 2 || signatureStopWords[tok] || normalizer.IsOrgToken(tok) {
			continue
		}
		if !alphabetic(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func alphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func insertIfAbsent(m map[string]string, key, value string) {
	if key == "" {
		return
	}
	if _, ok := m[key]; !ok {
		m[key] = value
	}
}
