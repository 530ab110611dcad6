package sentiment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScorePolarity(t *testing.T) {
	positive := Score("This is wonderful, I love the results and feel amazing.")
	negative := Score("Terrible experience, awful quality, I hate it.")

	require.Greater(t, positive, 0.0)
	require.Less(t, negative, 0.0)
	require.Greater(t, positive, negative)
}

func TestScoreIsBounded(t *testing.T) {
	texts := []string{
		"",
		"absolutely amazing fantastic wonderful best perfect love love love",
		"horrible terrible awful worst hate disgusting catastrophic",
		"the quick brown fox jumps over the lazy dog",
	}
	for _, text := range texts {
		score := Score(text)
		require.GreaterOrEqual(t, score, -1.0)
		require.LessOrEqual(t, score, 1.0)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	const text = "Mixed feelings: great results but terrible shipping."
	first := Score(text)
	for i := 0; i < 5; i++ {
		require.Equal(t, first, Score(text))
	}
}

func TestRemoveLinks(t *testing.T) {
	require.Equal(t, "see this study", RemoveLinks("see [this study](https://example.com/paper)"))
	require.Equal(t, "details: ", RemoveLinks("details: https://example.com/thread"))
}

func TestConvertMarkdownToText(t *testing.T) {
	out := ConvertMarkdownToText("**Bold claim** with a [link](https://example.com) inside")
	require.NotContains(t, out, "**")
	require.NotContains(t, out, "example.com")
	require.Contains(t, out, "Bold claim")
}

func TestLabel(t *testing.T) {
	require.Equal(t, "positive", Label(0.6))
	require.Equal(t, "negative", Label(-0.6))
	require.Equal(t, "neutral", Label(0.05))
}
