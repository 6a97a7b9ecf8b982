package prompts

// GetReviewSystemPrompt frames validation and repair calls.
func GetReviewSystemPrompt() string {
	return `You are a strict code reviewer for React + TypeScript (Vite) projects. Respond ONLY with the requested JSON.`
}

// GetValidationPrompt expects the serialized project files.
func GetValidationPrompt() string {
	return `
		Review the project files below for problems that would stop the project from building or rendering: missing or wrong imports, references to files that do not exist, unclosed JSX, missing package.json dependencies, missing default exports.

		---
		%s
		---

		Report only real defects - style preferences are not errors. Use severity "error" for build breakers and "warning" for likely runtime problems.

		Respond in the following format:

		` + "```json" + `
		{
			"errors": [
				{"file": "src/App.tsx", "message": "missing import for Navbar", "severity": "error"}
			]
		}
		` + "```" + `

		If the project is clean respond with {"errors": []}. Only the JSON object - no extra explanation.
	`
}

// GetRepairPrompt expects the target file path, the reported problems, and
// the current file content.
func GetRepairPrompt() string {
	return `
		Fix the reported problems in ` + "`%s`" + `.

		Problems:
		%s

		Current content:
		---
		%s
		---

		Return the corrected file, complete, not a fragment. Keep unrelated code unchanged.

		Respond with a single file:

		` + "```json" + `
		{"path": "%s", "content": "..."}
		` + "```" + `

		Only include code - no extra explanation.
	`
}
