package services

import (
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
)

// QueryAnalyzer extracts content keywords from a user query. The chat
// pipeline uses them to derive an optional subject filter for retrieval.
type QueryAnalyzer struct {
	// Common stop words to filter out
	stopWords map[string]bool
	// Minimum keyword length
	minLength int
}

// NewQueryAnalyzer creates a new query analyzer
func NewQueryAnalyzer() *QueryAnalyzer {
	stopWords := map[string]bool{
		"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
		"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
		"with": true, "by": true, "is": true, "are": true, "was": true, "were": true,
		"be": true, "been": true, "have": true, "has": true, "had": true, "do": true,
		"does": true, "did": true, "will": true, "would": true, "could": true, "should": true,
		"this": true, "that": true, "these": true, "those": true, "i": true, "you": true,
		"he": true, "she": true, "it": true, "we": true, "they": true, "my": true,
		"your": true, "his": true, "her": true, "its": true, "our": true, "their": true,
		"who": true, "what": true, "which": true, "where": true, "when": true, "how": true,
		"good": true, "best": true, "well": true, "professor": true, "professors": true,
		"teach": true, "teaches": true, "class": true, "course": true,
	}

	return &QueryAnalyzer{
		stopWords: stopWords,
		minLength: 2,
	}
}

// ExtractKeywords returns the content words of the query: nouns, proper
// nouns, and adjectives, lowercased and deduplicated in order of first
// appearance.
func (a *QueryAnalyzer) ExtractKeywords(query string) ([]string, error) {
	doc, err := prose.NewDocument(query)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var keywords []string

	for _, tok := range doc.Tokens() {
		if !strings.HasPrefix(tok.Tag, "NN") && !strings.HasPrefix(tok.Tag, "JJ") {
			continue
		}

		word := strings.ToLower(strings.TrimFunc(tok.Text, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		}))

		if len(word) < a.minLength || a.stopWords[word] || seen[word] {
			continue
		}

		seen[word] = true
		keywords = append(keywords, word)
	}

	return keywords, nil
}

// MatchSubjects returns the known subjects mentioned by the keywords.
// A subject matches when any keyword equals one of its words. Subject order
// is preserved.
func (a *QueryAnalyzer) MatchSubjects(keywords, subjects []string) []string {
	if len(keywords) == 0 || len(subjects) == 0 {
		return nil
	}

	keywordSet := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		keywordSet[k] = true
	}

	var matched []string
	for _, subject := range subjects {
		for _, word := range strings.Fields(strings.ToLower(subject)) {
			if keywordSet[word] {
				matched = append(matched, subject)
				break
			}
		}
	}

	return matched
}

// SubjectFilter builds the metadata filter for the vector query, or nil when
// no known subject was mentioned.
func (a *QueryAnalyzer) SubjectFilter(matched []string) map[string]interface{} {
	if len(matched) == 0 {
		return nil
	}
	return map[string]interface{}{
		"subject": map[string]interface{}{"$in": matched},
	}
}
