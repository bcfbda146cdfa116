package prompt

import (
	"fmt"
	"strings"
)

// Assembler combines persona instructions, retrieved context and the user
// question into one provider-agnostic prompt string.
type Assembler struct{}

// NewAssembler creates a prompt assembler.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Assemble builds the final prompt. contextBlock may be empty, in which case
// the grounding directives are omitted and the model answers without sources.
func (a *Assembler) Assemble(persona Persona, contextBlock string, citations []string, question string) string {
	var b strings.Builder

	b.WriteString(persona.Instruction())
	b.WriteString("\n\n")

	if contextBlock != "" {
		b.WriteString(contextBlock)
		b.WriteString("\n\n")
		a.writeGroundingDirectives(&b, citations)
	}

	b.WriteString("USER QUESTION: ")
	b.WriteString(question)
	b.WriteString("\n\nYOUR RESPONSE:")

	return b.String()
}

func (a *Assembler) writeGroundingDirectives(b *strings.Builder, citations []string) {
	example := "the source document"
	if len(citations) > 0 {
		example = fmt.Sprintf("%q", citations[0])
	}

	b.WriteString("Follow these rules when answering:\n")
	b.WriteString("1. Answer primarily from the sources above.\n")
	fmt.Fprintf(b, "2. Name the source when you cite it, e.g. \"According to %s...\".\n", example)
	b.WriteString("3. If the sources do not contain the answer, say so explicitly.\n")
	b.WriteString("4. Never present facts that are not grounded in the sources as if they were.\n\n")
}
