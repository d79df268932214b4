package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/entrhq/recall/pkg/memory"
)

func TestExtractEntitiesHonorifics(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"meeting with Dr. Chen tomorrow", "Dr. Chen"},
		{"email Prof. Liu about the draft", "Prof. Liu"},
		{"Professor Maria Santos reviewed it", "Professor Maria Santos"},
	}

	for _, tt := range tests {
		entities := ExtractEntities(tt.text)
		if assert.NotEmpty(t, entities, "text: %s", tt.text) {
			assert.Equal(t, tt.want, entities[0].Name)
			assert.Equal(t, memory.EntityPerson, entities[0].Type)
		}
	}
}

func TestExtractEntitiesProjects(t *testing.T) {
	entities := ExtractEntities("notes from the Helios project kickoff")
	if assert.Len(t, entities, 1) {
		assert.Equal(t, "Helios", entities[0].Name)
		assert.Equal(t, memory.EntityProject, entities[0].Type)
	}

	entities = ExtractEntities("started research on Quantum Sensing last week")
	if assert.Len(t, entities, 1) {
		assert.Equal(t, "Quantum Sensing", entities[0].Name)
	}
}

func TestExtractEntitiesDeduplicates(t *testing.T) {
	entities := ExtractEntities("Dr. Chen met Dr. Chen")
	assert.Len(t, entities, 1)
}

func TestExtractEntitiesNoMatch(t *testing.T) {
	assert.Empty(t, ExtractEntities("nothing interesting here"))
}

func TestExtractReferences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"quoted", `open "Stanford SOP" please`, "Stanford SOP"},
		{"typed", "update the budget file for me", "budget"},
		{"possessive", "append this to my grocery list", "grocery list"},
		{"title case", "link it to Weekly Review", "Weekly Review"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, ExtractReferences(tt.text), tt.want)
		})
	}
}

func TestExtractReferencesDropsShortFragments(t *testing.T) {
	for _, ref := range ExtractReferences(`open "it" now`) {
		assert.Greater(t, len(ref), 2)
	}
}

func TestExtractCommandPatterns(t *testing.T) {
	patterns := ExtractCommandPatterns("Can you summarize the meeting notes")
	assert.Equal(t, []string{"summarize the meeting notes"}, patterns)

	patterns = ExtractCommandPatterns("please open my thesis")
	assert.Equal(t, []string{"open my thesis"}, patterns)

	assert.Empty(t, ExtractCommandPatterns("summarize everything"))
}
