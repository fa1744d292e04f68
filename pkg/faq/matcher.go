package faq

import (
	"strings"
	"unicode"

	"github.com/aretw0/tafel/pkg/domain"
)

// Result is the outcome of a knowledge-base lookup.
type Result struct {
	// Record is the winning record, nil when nothing matched.
	Record *domain.Record
	// Score is the number of shared tokens between the query and Record.
	Score int
	// Answer is the record answer or the fallback.
	Answer string
}

// Matched reports whether a record was found.
func (r Result) Matched() bool {
	return r.Record != nil
}

// Normalize turns a query into its token set.
func Normalize(query string) map[string]struct{} {
	fields := tokenize(query)
	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		tokens[f] = struct{}{}
	}
	return tokens
}

// tokenize lower-cases s, drops everything except letters, digits, '_' and
// whitespace, and splits the rest on whitespace.
func tokenize(s string) []string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.Fields(b.String())
}

// Lookup scores the query against every record and returns the best one.
func (kb *KnowledgeBase) Lookup(query string) Result {
	tokens := Normalize(query)
	best := Result{Answer: kb.Fallback}

	for i := range kb.Records {
		score := 0
		for _, kw := range kb.Records[i].Keywords {
			if _, ok := tokens[kw]; ok {
				score++
			}
		}
		if score > best.Score {
			best = Result{Record: &kb.Records[i], Score: score, Answer: kb.Records[i].Answer}
		}
	}
	return best
}

// Match returns the best answer for the query and whether a record matched.
func (kb *KnowledgeBase) Match(query string) (string, bool) {
	res := kb.Lookup(query)
	return res.Answer, res.Matched()
}
