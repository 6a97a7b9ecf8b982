package prompts

// GetIntentSystemPrompt frames the routing classification call.
func GetIntentSystemPrompt() string {
	return `You are a request router for an AI website generator. Classify the user's request and respond ONLY with JSON.`
}

// GetIntentPrompt expects the user prompt and a short project summary.
func GetIntentPrompt() string {
	return `
		Classify the user's request against the current project.

		User request:
		---
		"%s"
		---

		Current project: %s

		Pick exactly one intent:
		*   "create"   - start a brand new project from scratch
		*   "modify"   - change, add to, or remove from the existing project
		*   "question" - a question about the existing project or its code
		*   "explain"  - asks for an explanation of how something in the project works

		Respond in the following format:

		` + "```json" + `
		{"intent": "create"}
		` + "```" + `

		Only the JSON object - no extra explanation.
	`
}

// GetChatSystemPrompt frames the question/explain branch.
func GetChatSystemPrompt() string {
	return `You are a helpful engineer answering questions about a generated web project. Be concise and concrete; reference file paths where relevant.`
}

// GetChatPrompt expects the question and the project context block.
func GetChatPrompt() string {
	return `
		The user asked:
		---
		"%s"
		---

		Project context:
		---
		%s
		---

		Answer the question in plain prose. Do not emit file contents unless asked.
	`
}
