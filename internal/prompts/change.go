package prompts

// GetChangeSystemPrompt frames the modify branch.
func GetChangeSystemPrompt() string {
	return `You are a code assistant helping to update an existing project. Respond ONLY with the requested JSON.`
}

// GetModificationAnalysisPrompt expects the user instruction and the list of
// existing project files.
func GetModificationAnalysisPrompt() string {
	return `
		User's instruction:
		---
		"%s"
		---

		Existing project files:
		%s

		Produce a modification plan: which files to create, modify, or delete to carry out the instruction. Touch as few files as possible. Paths of modified or deleted files must come from the list above.

		Respond in the following format:

		` + "```json" + `
		{
			"summary": "Add a testimonials section to the home page",
			"changes": [
				{"file": "src/pages/Home.tsx", "action": "modify", "description": "insert a Testimonials section below the hero"},
				{"file": "src/components/Testimonials.tsx", "action": "create", "description": "three-quote testimonial grid"}
			]
		}
		` + "```" + `

		Only the JSON object - no extra explanation.
	`
}

// GetModificationApplyPrompt expects the user instruction, the planned
// change description, the target path, and the current content block.
func GetModificationApplyPrompt() string {
	return `
		Apply the following change to the project.

		User's instruction:
		---
		"%s"
		---

		Planned change for ` + "`%s`" + `: %s

		%s

		Return the complete new file content, not a diff or fragment.

		Respond with a single file:

		` + "```json" + `
		{"path": "%s", "content": "..."}
		` + "```" + `

		Only include code - no extra explanation.
	`
}
