package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePersona(t *testing.T) {
	tests := []struct {
		id   string
		want Persona
	}{
		{"general", PersonaGeneral},
		{"skeptic", PersonaSkeptic},
		{"scribe", PersonaScribe},
		{"deep-diver", PersonaDeepDiver},
		{"", PersonaGeneral},
		{"hacker", PersonaGeneral},
		{"SKEPTIC", PersonaGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePersona(tt.id))
		})
	}
}

func TestPersonaInstructionOutsideEnum(t *testing.T) {
	bogus := Persona(99)
	assert.Equal(t, PersonaGeneral.Instruction(), bogus.Instruction())
}

func TestPersonaString(t *testing.T) {
	assert.Equal(t, "skeptic", PersonaSkeptic.String())
	assert.Equal(t, "general", PersonaGeneral.String())
	assert.Equal(t, "general", Persona(99).String())
}

func TestAssembleWithoutContext(t *testing.T) {
	a := NewAssembler()

	out := a.Assemble(PersonaGeneral, "", nil, "What is the plan?")

	assert.True(t, strings.HasPrefix(out, PersonaGeneral.Instruction()))
	assert.Contains(t, out, "USER QUESTION: What is the plan?")
	assert.True(t, strings.HasSuffix(out, "YOUR RESPONSE:"))
	assert.NotContains(t, out, "Follow these rules")
}

func TestAssembleWithContext(t *testing.T) {
	a := NewAssembler()

	contextBlock := "SOURCE 1: Alpha Brief (91% match)\nalpha content"
	out := a.Assemble(PersonaSkeptic, contextBlock, []string{"Alpha Brief"}, "Summarize")

	assert.Contains(t, out, PersonaSkeptic.Instruction())
	assert.Contains(t, out, contextBlock)
	assert.Contains(t, out, "Follow these rules")
	assert.Contains(t, out, `According to "Alpha Brief"...`)
	assert.Contains(t, out, "USER QUESTION: Summarize")
}

func TestAssembleCitationExampleFallback(t *testing.T) {
	a := NewAssembler()

	out := a.Assemble(PersonaGeneral, "SOURCE 1: x\ny", nil, "q")

	assert.Contains(t, out, "According to the source document...")
}

func TestAssembleSectionOrder(t *testing.T) {
	a := NewAssembler()

	out := a.Assemble(PersonaScribe, "CONTEXT", []string{"Doc"}, "q")

	personaIdx := strings.Index(out, PersonaScribe.Instruction())
	contextIdx := strings.Index(out, "CONTEXT")
	rulesIdx := strings.Index(out, "Follow these rules")
	questionIdx := strings.Index(out, "USER QUESTION:")

	assert.True(t, personaIdx < contextIdx)
	assert.True(t, contextIdx < rulesIdx)
	assert.True(t, rulesIdx < questionIdx)
}
