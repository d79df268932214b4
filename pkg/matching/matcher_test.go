package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreSubstringContainment(t *testing.T) {
	confidence, reason := Score("standup", "Daily Standup.md")
	assert.Equal(t, 0.95, confidence)
	assert.Contains(t, reason, "contains 'standup'")
}

func TestScoreReverseContainment(t *testing.T) {
	confidence, reason := Score("the daily standup note from monday", "Daily Standup.md")
	assert.Equal(t, 0.90, confidence)
	assert.Equal(t, "name contained in reference", reason)
}

func TestScoreIgnoresCaseAndExtension(t *testing.T) {
	a, _ := Score("STANDUP", "daily standup.md")
	b, _ := Score("standup", "Daily Standup")
	assert.Equal(t, a, b)
	assert.Equal(t, 0.95, a)
}

func TestScoreTypo(t *testing.T) {
	// "stanup" is a transcription typo for "standup": no substring or
	// token match, but the character-sequence ratio carries it.
	confidence, _ := Score("stanup", "Daily Standup.md")
	assert.Greater(t, confidence, 0.5)

	unrelated, _ := Score("stanup", "Weekly Review.md")
	assert.Less(t, unrelated, confidence)
}

func TestScorePathSegmentBonus(t *testing.T) {
	with, _ := Score("meetings/standup", "Daily Standup.md")
	without, _ := Score("meetings/qbr", "Daily Standup.md")
	assert.Greater(t, with, without)
}

func TestScoreCappedAtOne(t *testing.T) {
	confidence, _ := Score("notes/standup", "standup.md")
	assert.LessOrEqual(t, confidence, 1.0)
}

func TestScoreMonotonicity(t *testing.T) {
	// An exact-substring candidate must score at least as high as one
	// sharing only partial tokens.
	exact, _ := Score("standup", "Daily Standup.md")

	partials := []string{"Standups Archive Overview.md", "Weekly Standing Items.md"}
	for _, candidate := range partials {
		partial, _ := Score("standup", candidate)
		assert.GreaterOrEqual(t, exact, partial, "candidate %q outranked exact substring match", candidate)
	}
}

func TestScoreEmptyInputs(t *testing.T) {
	confidence, _ := Score("", "Daily Standup.md")
	assert.Equal(t, 0.0, confidence)

	confidence, _ = Score("standup", "")
	assert.Equal(t, 0.0, confidence)
}

func TestRankOrdersByConfidence(t *testing.T) {
	vault := []string{"Weekly Review.md", "Daily Standup.md", "Standup Archive.md"}

	ranked := Rank("stanup", vault, 0)
	require.NotEmpty(t, ranked)
	assert.Equal(t, "Daily Standup.md", ranked[0].Path)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Confidence, ranked[i].Confidence)
	}
}

func TestRankExcludesIrrelevant(t *testing.T) {
	vault := []string{"Daily Standup.md", "Weekly Review.md"}

	ranked := Rank("zzz_no_such_note", vault, 0)
	assert.Empty(t, ranked)
}

func TestRankKeepsExactTokenMatch(t *testing.T) {
	// Neither string contains the other, but they share the exact
	// token "standup"; the token rule keeps the candidate regardless
	// of the ratio score.
	vault := []string{"Team Standup Checklist.md"}

	ranked := Rank("standup xylophone", vault, 0)
	require.Len(t, ranked, 1)
	assert.Contains(t, ranked[0].Reason, "exact word match")
}

func TestRankTruncatesToTopK(t *testing.T) {
	vault := []string{
		"standup one.md", "standup two.md", "standup three.md",
		"standup four.md", "standup five.md", "standup six.md",
	}

	ranked := Rank("standup", vault, 0)
	assert.Len(t, ranked, DefaultTopK)

	ranked = Rank("standup", vault, 2)
	assert.Len(t, ranked, 2)
}

func TestRankTiesKeepEnumerationOrder(t *testing.T) {
	// Both candidates contain the reference and score identically; the
	// ranking must preserve the caller's order.
	vault := []string{"standup alpha.md", "standup beta.md"}

	ranked := Rank("standup", vault, 0)
	require.Len(t, ranked, 2)
	assert.Equal(t, "standup alpha.md", ranked[0].Path)
	assert.Equal(t, "standup beta.md", ranked[1].Path)
}

func TestRankIsDeterministic(t *testing.T) {
	vault := []string{"Daily Standup.md", "Standup Archive.md", "Weekly Review.md"}

	first := Rank("standup notes", vault, 0)
	second := Rank("standup notes", vault, 0)
	assert.Equal(t, first, second)
}
