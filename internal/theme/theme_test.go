package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPickReturnsCatalogTheme(t *testing.T) {
	p := NewPicker(1)
	names := make(map[string]bool)
	for _, n := range Catalog() {
		names[n] = true
	}
	for i := 0; i < 20; i++ {
		picked := p.Pick()
		require.NotNil(t, picked)
		assert.True(t, names[picked.Name], "unknown theme %q", picked.Name)
		assert.NotEmpty(t, picked.Colors["primary"])
		assert.NotEmpty(t, picked.HeadingFont)
	}
}

func TestPickIsDeterministicWithSeed(t *testing.T) {
	a, b := NewPicker(42), NewPicker(42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Pick().Name, b.Pick().Name)
	}
}

func TestPickCopiesColors(t *testing.T) {
	p := NewPicker(7)
	first := p.Pick()
	first.Colors["primary"] = "#000000"

	for i := 0; i < 20; i++ {
		next := p.Pick()
		if next.Name == first.Name {
			assert.NotEqual(t, "#000000", next.Colors["primary"], "catalog must not be mutated through picks")
			return
		}
	}
}
