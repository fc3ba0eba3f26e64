package usecase

import "strings"

// DefaultPromptSuffix はプロンプト末尾に付与する既定の指示文です。
const DefaultPromptSuffix = "Provide the summaries for each category in the form of paragraphs"

const promptInstructions = `Please summarize the given text into the following categories:
Financial Performance: Summarize key financial metrics or statements about the company's recent performance.
Market Dynamics: Summarize any commentary on market trends, demand shifts, competition, etc.
Expansion Plans: Summarize any information on the company's plans for growth or expansion.
Environmental Risks: Summarize references to environmental issues, sustainability, or ESG concerns.
Regulatory or Policy Changes: Summarize any information on recent or upcoming regulatory or policy changes affecting the company.

Text:`

// BuildPrompt は固定の指示ブロック、"Text:"、本文、空行、指示文の順でプロンプトを組み立てます。
func BuildPrompt(transcript, suffix string) string {
	if suffix == "" {
		suffix = DefaultPromptSuffix
	}
	var b strings.Builder
	b.Grow(len(promptInstructions) + len(transcript) + len(suffix) + 2)
	b.WriteString(promptInstructions)
	b.WriteString(transcript)
	b.WriteString("\n\n")
	b.WriteString(suffix)
	return b.String()
}
