// Package theme holds the curated design palettes injected into blueprints
// so consecutive generations do not all come out looking the same.
package theme

import (
	"math/rand"
	"sync"
	"time"

	"github.com/thelogicnomad/sitecrafter-final-version-backend/internal/types"
)

var catalog = []types.Theme{
	{
		Name:        "coastal",
		Description: "calm blues with warm sand accents",
		Colors: map[string]string{
			"primary":    "#1A73E8",
			"accent":     "#FF6F61",
			"background": "#F9FAFB",
			"surface":    "#FFFFFF",
			"text":       "#111827",
		},
		HeadingFont: "Inter",
		BodyFont:    "Inter",
	},
	{
		Name:        "orchard",
		Description: "fresh greens on cream",
		Colors: map[string]string{
			"primary":    "#16A34A",
			"accent":     "#F59E0B",
			"background": "#FEFCE8",
			"surface":    "#FFFFFF",
			"text":       "#1C1917",
		},
		HeadingFont: "Poppins",
		BodyFont:    "Inter",
	},
	{
		Name:        "midnight",
		Description: "dark surfaces with violet highlights",
		Colors: map[string]string{
			"primary":    "#8B5CF6",
			"accent":     "#22D3EE",
			"background": "#0F172A",
			"surface":    "#1E293B",
			"text":       "#E2E8F0",
		},
		HeadingFont: "Space Grotesk",
		BodyFont:    "Inter",
	},
	{
		Name:        "terracotta",
		Description: "earthy reds and baked clay",
		Colors: map[string]string{
			"primary":    "#C2410C",
			"accent":     "#0D9488",
			"background": "#FFF7ED",
			"surface":    "#FFFFFF",
			"text":       "#292524",
		},
		HeadingFont: "Playfair Display",
		BodyFont:    "Source Sans 3",
	},
	{
		Name:        "slate",
		Description: "neutral grays with a single blue pop",
		Colors: map[string]string{
			"primary":    "#2563EB",
			"accent":     "#64748B",
			"background": "#F8FAFC",
			"surface":    "#FFFFFF",
			"text":       "#0F172A",
		},
		HeadingFont: "IBM Plex Sans",
		BodyFont:    "IBM Plex Sans",
	},
	{
		Name:        "rosewood",
		Description: "soft pinks with deep plum text",
		Colors: map[string]string{
			"primary":    "#DB2777",
			"accent":     "#9333EA",
			"background": "#FDF2F8",
			"surface":    "#FFFFFF",
			"text":       "#4A044E",
		},
		HeadingFont: "DM Serif Display",
		BodyFont:    "Nunito Sans",
	},
}

// Picker hands out themes at random. A non-zero seed makes the sequence
// reproducible.
type Picker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewPicker(seed int64) *Picker {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Picker{rng: rand.New(rand.NewSource(seed))}
}

// Pick returns a copy of a random catalog theme.
func (p *Picker) Pick() *types.Theme {
	p.mu.Lock()
	t := catalog[p.rng.Intn(len(catalog))]
	p.mu.Unlock()

	colors := make(map[string]string, len(t.Colors))
	for k, v := range t.Colors {
		colors[k] = v
	}
	t.Colors = colors
	return &t
}

// Catalog lists the available theme names.
func Catalog() []string {
	out := make([]string, len(catalog))
	for i, t := range catalog {
		out[i] = t.Name
	}
	return out
}
