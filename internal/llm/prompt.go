package llm

import "strings"

const localPrompt = `Fix grammar and structure this journal entry. Return JSON with title, content, and tags.

Input: {{INPUT}}

CRITICAL RULES:
- NEVER translate the text - keep the EXACT same language as the input
- NEVER add new information or content not in the original
- ONLY fix spelling mistakes and grammar errors
- ONLY improve sentence structure and formatting
- Keep ALL original meaning and content intact
- Title: 3-5 words describing the note, lowercase, hyphen-separated, ends with .md
- Content: cleaned up version of the input with better formatting (paragraphs, bullet points if needed)
- Tags: 0-3 relevant keywords from the content

Return ONLY valid JSON:
{"title": "short-descriptive-name.md", "content": "Cleaned up content here", "tags": ["tag1", "tag2"]}`

const cloudSystemPrompt = `You ONLY fix grammar and formatting. NEVER translate. NEVER add commentary like 'here is' or summaries. NEVER add content not in original. Output ONLY cleaned text, nothing else.`

const cloudUserPrompt = `Clean up this text. Fix spelling/grammar only.

Input: {{INPUT}}

RULES:
- Same language as input
- NO added commentary or explanations
- NO "here is" or "summary" text
- NO new information
- ONLY fix errors and formatting
- Title: 3-5 words, lowercase, hyphen-separated, ends with .md
- Tags: 0-3 keywords from the content

Return JSON:
{"title": "name.md", "content": "cleaned text only", "tags": []}`

const summarySystemPrompt = `You are a helpful assistant that summarizes journal entries. Be concise and highlight key points. Answer in the same language as the entry.`

func fillPrompt(template, input string) string {
	return strings.ReplaceAll(template, "{{INPUT}}", input)
}

func buildLocalPrompt(input string) string {
	return fillPrompt(localPrompt, input)
}

func buildSummaryPrompt(input string) string {
	return summarySystemPrompt + "\n\nEntry:\n" + input
}
