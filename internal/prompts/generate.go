package prompts

// GetGeneratorSystemPrompt is shared by every file-producing stage of the
// creation pipeline.
func GetGeneratorSystemPrompt() string {
	return `You are a senior frontend engineer generating a React + TypeScript (Vite) project styled with TailwindCSS. Respond ONLY with the requested JSON. Your output is parsed and saved as project files.`
}

// GetBlueprintPrompt expects the user description, the project type, and a
// JSON-encoded design theme.
func GetBlueprintPrompt() string {
	return `
		A user has submitted the following project description:

		---
		"%s"
		---

		Project type: %s
		Design theme to build on: %s

		Produce a project blueprint. Keep it small and buildable: at most 6 pages, at most 8 components.

		Respond in the following format:

		` + "```json" + `
		{
			"name": "bakery-site",
			"description": "A marketing site for a neighborhood bakery",
			"features": ["menu browsing", "contact form"],
			"pages": ["Home", "Menu", "Contact"],
			"components": ["Navbar", "Footer", "MenuCard"],
			"dependencies": {"react-router-dom": "^6.22.0", "framer-motion": "^11.0.0"}
		}
		` + "```" + `

		Only the JSON object - no extra explanation.
	`
}

// GetStructurePrompt expects the blueprint JSON and the theme JSON.
func GetStructurePrompt() string {
	return `
		Generate the scaffolding files for this project blueprint:

		---
		%s
		---

		Design theme:
		---
		%s
		---

		Rules:

		1.  **Frontend Framework**: React + TypeScript (Vite)
		2.  **Styling**: TailwindCSS wired through the theme colors above
		3.  Produce exactly these files: ` + "`package.json`" + `, ` + "`index.html`" + `, ` + "`vite.config.ts`" + `, ` + "`tailwind.config.ts`" + `, ` + "`src/main.tsx`" + `, ` + "`src/index.css`" + `
		4.  package.json must list every library imported anywhere in these files, with @vitejs/plugin-react and tailwindcss as dev dependencies

		Respond with a structured array of files in the following format:

		` + "```json" + `
		[
		{
			"path": "package.json",
			"content": "..."
		},
		{
			"path": "src/main.tsx",
			"content": "..."
		}
		]
		` + "```" + `

		Only include code - no extra explanation.
	`
}

// GetCoreFilesPrompt expects the blueprint JSON and the list of files that
// already exist.
func GetCoreFilesPrompt() string {
	return `
		Generate the core application files for this project blueprint:

		---
		%s
		---

		Files already generated: %s

		Produce ` + "`src/App.tsx`" + ` (routes for every blueprint page, wrapped in the shared layout) and any small helpers App.tsx needs (e.g. ` + "`src/lib/routes.ts`" + `). Import pages from ` + "`src/pages/`" + ` and components from ` + "`src/components/`" + ` using the names in the blueprint; those files are generated next and must match.

		Respond with a structured array of files in the same JSON format as before:

		` + "```json" + `
		[{"path": "src/App.tsx", "content": "..."}]
		` + "```" + `

		Only include code - no extra explanation.
	`
}

// GetComponentsPrompt expects the blueprint JSON and the component name list.
func GetComponentsPrompt() string {
	return `
		Generate the reusable components for this project blueprint:

		---
		%s
		---

		Components to produce (one file each, under ` + "`src/components/`" + `): %s

		Each component is a typed React function component styled with TailwindCSS classes drawn from the blueprint theme. Export each component as the default export of its file.

		Respond with a structured array of files:

		` + "```json" + `
		[{"path": "src/components/Navbar.tsx", "content": "..."}]
		` + "```" + `

		Only include code - no extra explanation.
	`
}

// GetPageSetPrompt expects the blueprint JSON.
func GetPageSetPrompt() string {
	return `
		List the pages of the site described by this blueprint:

		---
		%s
		---

		Every blueprint page must appear, plus a not-found page. Keep names PascalCase and routes lowercase.

		Respond in the following format:

		` + "```json" + `
		{
			"pages": [
				{"name": "Home", "route": "/", "description": "landing page with hero section"},
				{"name": "NotFound", "route": "*", "description": "404 page"}
			]
		}
		` + "```" + `

		Only the JSON object - no extra explanation.
	`
}

// GetPagePrompt expects the page name, route, description, the blueprint
// JSON, and the available component names.
func GetPagePrompt() string {
	return `
		Generate the full source for the page "%s" (route %s): %s

		Project blueprint:
		---
		%s
		---

		Available components (import from ` + "`../components/`" + `): %s

		The page is a typed React function component, default export, styled with TailwindCSS from the blueprint theme.

		Respond with a single file:

		` + "```json" + `
		{"path": "src/pages/%s.tsx", "content": "..."}
		` + "```" + `

		Only include code - no extra explanation.
	`
}
