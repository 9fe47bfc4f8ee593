// Package decision scores raw messages for decision-ness using weighted
// keyword, reaction, and thread-agreement signals. Pure functions, no
// model calls: this heuristic decides whether a message is worth a run at
// all.
package decision

import (
	"fmt"
	"strings"
	"unicode"
)

// Default weights and threshold. These come from team policy; deployments
// may override them through Config but the defaults are the documented
// behavior.
const (
	DefaultKeywordWeight  = 0.4
	DefaultReactionWeight = 0.5
	DefaultThreadWeight   = 0.3
	DefaultThreshold      = 0.85
	DefaultTitleMaxLen    = 100
)

// DefaultKeywords is the bilingual decision-marker list. Entries must not
// be substrings of one another or a single phrase would double-count.
var DefaultKeywords = []string{
	"decided",
	"agreed",
	"decision",
	"confirmed",
	"let's go with",
	"we will",
	"확정",
	"결정",
	"합의",
	"하기로",
}

// DefaultReactions is the fixed set of affirming reactions.
var DefaultReactions = []string{
	"white_check_mark",
	"heavy_check_mark",
	"ballot_box_with_check",
	"thumbsup",
}

// Config holds the heuristic's weights, threshold, and signal lists.
type Config struct {
	KeywordWeight  float64
	ReactionWeight float64
	ThreadWeight   float64
	Threshold      float64
	TitleMaxLen    int
	Keywords       []string
	Reactions      []string
}

// DefaultConfig returns the documented default policy.
func DefaultConfig() Config {
	return Config{
		KeywordWeight:  DefaultKeywordWeight,
		ReactionWeight: DefaultReactionWeight,
		ThreadWeight:   DefaultThreadWeight,
		Threshold:      DefaultThreshold,
		TitleMaxLen:    DefaultTitleMaxLen,
		Keywords:       DefaultKeywords,
		Reactions:      DefaultReactions,
	}
}

// Detection is the heuristic's verdict on one message.
type Detection struct {
	IsDecision     bool     `json:"isDecision"`
	Confidence     float64  `json:"confidence"`
	Signals        []string `json:"signals,omitempty"`
	ExtractedTitle string   `json:"extractedTitle"`
}

// Detect scores text with the default policy.
func Detect(text string, reactions []string, threadUserCount int) Detection {
	return DefaultConfig().Detect(text, reactions, threadUserCount)
}

// Detect scores text against this config. Confidence accumulates
// additively per distinct matched keyword, per matching reaction, and for
// thread agreement, clamped to [0,1]. Empty input yields zero confidence
// and an empty title.
func (c Config) Detect(text string, reactions []string, threadUserCount int) Detection {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Detection{}
	}

	var confidence float64
	var signals []string

	lower := strings.ToLower(trimmed)
	for _, kw := range c.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			confidence += c.KeywordWeight
			signals = append(signals, fmt.Sprintf("keyword:%s", kw))
		}
	}

	for _, r := range reactions {
		for _, known := range c.Reactions {
			if r == known {
				confidence += c.ReactionWeight
				signals = append(signals, fmt.Sprintf("reaction:%s", r))
				break
			}
		}
	}

	if threadUserCount >= 2 {
		confidence += c.ThreadWeight
		signals = append(signals, fmt.Sprintf("thread:%d users", threadUserCount))
	}

	if confidence > 1 {
		confidence = 1
	}

	return Detection{
		IsDecision:     confidence >= c.Threshold,
		Confidence:     confidence,
		Signals:        signals,
		ExtractedTitle: c.extractTitle(trimmed),
	}
}

// extractTitle cuts the trimmed text at the first sentence terminator
// before TitleMaxLen (inclusive of the terminator); otherwise returns the
// text as-is if it fits, or the first TitleMaxLen runes with an ellipsis.
func (c Config) extractTitle(trimmed string) string {
	maxLen := c.TitleMaxLen
	if maxLen <= 0 {
		maxLen = DefaultTitleMaxLen
	}

	runes := []rune(trimmed)
	limit := len(runes)
	if limit > maxLen {
		limit = maxLen
	}
	for i := 0; i < limit; i++ {
		if !isTerminator(runes[i]) {
			continue
		}
		// A terminator only ends a sentence at end-of-text or before
		// whitespace; "v3.5" keeps its dot.
		if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
			return string(runes[:i+1])
		}
	}

	if len(runes) <= maxLen {
		return trimmed
	}
	return string(runes[:maxLen]) + "…"
}

func isTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '。':
		return true
	}
	return false
}
