package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/recall/pkg/matching"
)

var testCandidates = []matching.Candidate{
	{Path: "Daily Standup.md", Confidence: 0.63, Reason: "63% similarity"},
	{Path: "Standup Archive.md", Confidence: 0.57, Reason: "57% similarity"},
}

func TestStdinChooserSelection(t *testing.T) {
	var out bytes.Buffer
	chooser := &StdinChooser{In: strings.NewReader("1\n"), Out: &out}

	choice, err := chooser.Choose("stanup", testCandidates)
	require.NoError(t, err)
	assert.Equal(t, "Daily Standup.md", choice.Path)
	assert.False(t, choice.Cancelled)
	assert.False(t, choice.Manual)

	// Every candidate was shown with its confidence.
	assert.Contains(t, out.String(), "Daily Standup.md")
	assert.Contains(t, out.String(), "Standup Archive.md")
	assert.Contains(t, out.String(), "63%")
}

func TestStdinChooserSecondCandidate(t *testing.T) {
	chooser := &StdinChooser{In: strings.NewReader("2\n"), Out: &bytes.Buffer{}}

	choice, err := chooser.Choose("stanup", testCandidates)
	require.NoError(t, err)
	assert.Equal(t, "Standup Archive.md", choice.Path)
}

func TestStdinChooserCancel(t *testing.T) {
	for _, input := range []string{"\n", "q\n", "0\n", "7\n", "banana\n"} {
		chooser := &StdinChooser{In: strings.NewReader(input), Out: &bytes.Buffer{}}
		choice, err := chooser.Choose("stanup", testCandidates)
		require.NoError(t, err)
		assert.True(t, choice.Cancelled, "input %q should cancel", input)
	}
}

func TestStdinChooserManualOverride(t *testing.T) {
	chooser := &StdinChooser{In: strings.NewReader("m Weekly Review\n"), Out: &bytes.Buffer{}}

	choice, err := chooser.Choose("stanup", testCandidates)
	require.NoError(t, err)
	assert.True(t, choice.Manual)
	assert.Equal(t, "Weekly Review", choice.Path)
}

func TestStdinChooserEOFCancels(t *testing.T) {
	chooser := &StdinChooser{In: strings.NewReader(""), Out: &bytes.Buffer{}}

	choice, err := chooser.Choose("stanup", testCandidates)
	require.NoError(t, err)
	assert.True(t, choice.Cancelled)
}

func TestStdinChooserNoCandidates(t *testing.T) {
	chooser := &StdinChooser{In: strings.NewReader("1\n"), Out: &bytes.Buffer{}}

	choice, err := chooser.Choose("stanup", nil)
	require.NoError(t, err)
	assert.True(t, choice.Cancelled)
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Choice
	}{
		{"first", "1", Choice{Path: "Daily Standup.md"}},
		{"whitespace", "  2  ", Choice{Path: "Standup Archive.md"}},
		{"manual", "m Thesis", Choice{Path: "Thesis", Manual: true}},
		{"manual empty", "m ", Choice{Cancelled: true}},
		{"out of range", "3", Choice{Cancelled: true}},
		{"garbage", "wat", Choice{Cancelled: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSelection(tt.input, testCandidates))
		})
	}
}
