// Package sentiment scores discussion text with the VADER lexicon.
// Scoring is purely lexicon based and fully deterministic, which the
// analyzer depends on for reproducible trend buckets.
package sentiment

import (
	"regexp"
	"strings"

	"github.com/jonreiter/govader"
	"github.com/russross/blackfriday/v2"
)

var analyzer = govader.NewSentimentIntensityAnalyzer()

var (
	mdLinkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern    = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

func RemoveLinks(input string) string {
	input = mdLinkPattern.ReplaceAllString(input, "$1") // keep only the text
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders forum markdown to plain text and
// strips URLs, so link noise never reaches the lexicon.
func ConvertMarkdownToText(input string) string {
	output := blackfriday.Run([]byte(input), blackfriday.WithNoExtensions())
	plainText := strings.Join(strings.Fields(string(output)), " ")

	return RemoveLinks(plainText)
}

// Score returns the VADER compound polarity, clamped to [-1, 1].
func Score(text string) float64 {
	plainText := ConvertMarkdownToText(text)

	score := analyzer.PolarityScores(plainText).Compound
	if score > 1 {
		score = 1
	} else if score < -1 {
		score = -1
	}
	return score
}

// Label buckets a compound score for log output.
func Label(score float64) string {
	switch {
	case score >= 0.20:
		return "positive"
	case score <= -0.20:
		return "negative"
	default:
		return "neutral"
	}
}
