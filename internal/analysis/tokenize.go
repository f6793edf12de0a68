// Package analysis implements the deterministic resume/job-description
// heuristics: keyword extraction, scoring tokenization, resume parsing,
// ATS scoring and dashboard metrics.
//
// Everything here is a pure function of its inputs. There is no I/O and
// no mutable package state, so callers may invoke any function from any
// goroutine.
package analysis

import (
	"regexp"
	"sort"
	"strings"
)

// Profile names a tokenizer configuration. The two profiles are not
// interchangeable: the dashboard uses Extraction, the ATS score uses Scoring.
type Profile string

const (
	ProfileExtraction Profile = "extraction"
	ProfileScoring    Profile = "scoring"
)

var (
	extractionWordRe    = regexp.MustCompile(`[a-z][a-z0-9+#.-]{2,}`)
	scoringDisallowedRe = regexp.MustCompile(`[^a-z0-9+#.\-\s]`)
)

var extractionStopwords = newWordSet(
	"the", "and", "with", "that", "from", "your", "for", "are", "this", "you",
	"have", "will", "into", "using", "build", "role", "team", "work", "skills",
	"experience",
)

var scoringStopwords = newWordSet(
	"the", "and", "for", "with", "from", "that", "this", "will", "have", "your",
	"about", "you", "our", "are", "job", "role",
)

type wordSet map[string]struct{}

func newWordSet(words ...string) wordSet {
	s := make(wordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

func (s wordSet) has(w string) bool {
	_, ok := s[w]
	return ok
}

// ExtractKeywords returns up to limit distinct keywords of text ordered by
// frequency, most frequent first. Ties keep first-appearance order.
// A non-positive limit yields an empty list.
func ExtractKeywords(text string, limit int) []string {
	if limit <= 0 {
		return []string{}
	}

	type entry struct {
		word  string
		count int
	}
	index := make(map[string]int)
	var entries []entry
	for _, word := range extractionWordRe.FindAllString(strings.ToLower(text), -1) {
		if extractionStopwords.has(word) {
			continue
		}
		if i, ok := index[word]; ok {
			entries[i].count++
			continue
		}
		index[word] = len(entries)
		entries = append(entries, entry{word: word, count: 1})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].count > entries[j].count
	})

	n := min(limit, len(entries))
	out := make([]string, n)
	for i := range n {
		out[i] = entries[i].word
	}
	return out
}

// Tokenize splits text into scoring tokens, in order, duplicates kept.
// Tokens are lower-cased, shorter than three characters are dropped,
// and only letters, digits and "+#.-" survive inside a token.
func Tokenize(text string) []string {
	cleaned := scoringDisallowedRe.ReplaceAllString(strings.ToLower(text), " ")
	fields := strings.Fields(cleaned)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 3 || scoringStopwords.has(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// Keywords dispatches on profile. Scoring keywords are the distinct
// tokens in first-seen order, truncated to limit.
func Keywords(text string, profile Profile, limit int) []string {
	if profile == ProfileScoring {
		tokens := unique(Tokenize(text))
		if limit <= 0 {
			return []string{}
		}
		return tokens[:min(limit, len(tokens))]
	}
	return ExtractKeywords(text, limit)
}

// ParseProfile maps a user-facing name to a Profile.
func ParseProfile(name string) (Profile, bool) {
	switch Profile(strings.ToLower(strings.TrimSpace(name))) {
	case ProfileExtraction, "":
		return ProfileExtraction, true
	case ProfileScoring:
		return ProfileScoring, true
	}
	return "", false
}

func unique(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
