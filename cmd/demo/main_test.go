package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kass/capital-routes/pkg/style"
)

func TestNextHighlight(t *testing.T) {
	seen := []style.Category{}
	c := style.Category("")
	for i := 0; i < len(style.Categories)+1; i++ {
		c = nextHighlight(c)
		seen = append(seen, c)
	}

	assert.Equal(t, []style.Category{style.Long, style.UpperMedium, style.LowerMedium, style.Short, ""}, seen)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Oslo", truncate("Oslo", 10))
	assert.Equal(t, "Kuala Lu…", truncate("Kuala Lumpur", 9))
}
