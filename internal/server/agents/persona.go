// Package agents fans a business question out to several persona-prompted
// completions and merges the answers into one structured reply.
package agents

import "strings"

// Persona is one expert point of view. Instruction is prepended to the
// user's question.
type Persona struct {
	Label       string
	Instruction string
}

// DefaultPersonas returns the built-in marketing, sales and finance experts.
func DefaultPersonas() []Persona {
	return []Persona{
		{
			Label: "Marketing Director's Analysis",
			Instruction: "You are an expert, professional marketing director. When analysing a business, " +
				"focus only on marketing strategy, advertising channels, branding and customer acquisition. " +
				"Answer in a professional tone.",
		},
		{
			Label: "Sales Director's Analysis",
			Instruction: "You are an experienced sales director. When analysing a business, look only at " +
				"sales processes, conversion rates, sales team management and revenue forecasting. " +
				"Answer in a professional tone.",
		},
		{
			Label: "Finance Director's Analysis",
			Instruction: "You are a meticulous finance director. When analysing a business, consider only " +
				"costs, budgeting, profitability and return on investment (ROI). " +
				"Answer in a professional tone.",
		},
	}
}

// BuildPrompt qualifies question with the persona instruction.
func BuildPrompt(p Persona, question string) string {
	return p.Instruction + "\n\nQuestion: " + question
}

// Section is one persona's contribution to an Answer.
type Section struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Answer holds the sections in persona declaration order.
type Answer struct {
	Sections []Section `json:"sections"`
}

const sectionDivider = "\n\n---\n\n"

// Render formats the answer as labelled Markdown blocks separated by a
// horizontal rule.
func (a *Answer) Render() string {
	blocks := make([]string, 0, len(a.Sections))
	for _, s := range a.Sections {
		blocks = append(blocks, "**"+s.Label+":**\n"+s.Text)
	}
	return strings.Join(blocks, sectionDivider)
}
