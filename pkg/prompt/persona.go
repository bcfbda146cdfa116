package prompt

// Persona selects the instruction set an exchange is answered under. The set
// is closed: anything unrecognized resolves to PersonaGeneral.
type Persona int

const (
	PersonaGeneral Persona = iota
	PersonaSkeptic
	PersonaScribe
	PersonaDeepDiver
)

var personaInstructions = map[Persona]string{
	PersonaGeneral: "You are a capable, direct assistant in the user's war room. " +
		"Answer clearly and concisely, and organize longer answers with short headings or lists.",
	PersonaSkeptic: "You are a skeptical analyst. Challenge assumptions in the question and in the " +
		"source material, point out weak evidence, and clearly separate what is established from what is speculation.",
	PersonaScribe: "You are a meticulous scribe. Produce structured, complete notes: capture decisions, " +
		"action items, owners and open questions, and preserve the original wording of key statements.",
	PersonaDeepDiver: "You are a deep-dive researcher. Work through the problem step by step, examine the " +
		"source material exhaustively, and surface secondary details and connections a quick read would miss.",
}

var personaNames = map[string]Persona{
	"general":    PersonaGeneral,
	"skeptic":    PersonaSkeptic,
	"scribe":     PersonaScribe,
	"deep-diver": PersonaDeepDiver,
}

// ParsePersona maps a loosely-typed persona id to the closed enum. Unknown
// ids fall back to PersonaGeneral; this never fails.
func ParsePersona(id string) Persona {
	if p, ok := personaNames[id]; ok {
		return p
	}
	return PersonaGeneral
}

// Instruction returns the fixed instruction text for the persona. Values
// outside the enum read as PersonaGeneral.
func (p Persona) Instruction() string {
	if text, ok := personaInstructions[p]; ok {
		return text
	}
	return personaInstructions[PersonaGeneral]
}

// String returns the canonical id of the persona.
func (p Persona) String() string {
	switch p {
	case PersonaSkeptic:
		return "skeptic"
	case PersonaScribe:
		return "scribe"
	case PersonaDeepDiver:
		return "deep-diver"
	default:
		return "general"
	}
}
