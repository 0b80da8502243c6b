package tui

import (
	"strings"
	"testing"

	"github.com/Zacy-Sokach/RagChat/internal/uistate"
	"github.com/stretchr/testify/assert"
)

func TestMarkdownRenderBlocks(t *testing.T) {
	r := NewMarkdownRenderer(NewStyles(uistate.ThemeDark))

	out := r.Render(strings.Join([]string{
		"# Title",
		"",
		"Some **bold** and `code` text with a [link](https://example.com).",
		"",
		"- item one",
		"- item two",
		"",
		"1. first",
		"2. second",
		"",
		"```go",
		"fmt.Println(\"hi\")",
		"```",
		"",
		"> quoted",
	}, "\n"), 0)

	assert.Contains(t, out, "# Title")
	assert.Contains(t, out, "bold")
	assert.Contains(t, out, "code")
	assert.Contains(t, out, "https://example.com")
	assert.Contains(t, out, "• item one")
	assert.Contains(t, out, "• item two")
	assert.Contains(t, out, "1. first")
	assert.Contains(t, out, "2. second")
	assert.Contains(t, out, "Println")
	assert.Contains(t, out, `"hi"`)
	assert.Contains(t, out, "│ quoted")
	assert.NotContains(t, out, "**")
	assert.NotContains(t, out, "\n\n\n")
}

func TestMarkdownRenderTable(t *testing.T) {
	r := NewMarkdownRenderer(NewStyles(uistate.ThemeLight))

	out := r.Render("| a | bb |\n|---|----|\n| 1 | 2 |\n", 0)
	assert.Contains(t, out, "a │ bb")
	assert.Contains(t, out, "1 │ 2")
	assert.Contains(t, out, "┼")
}

func TestMarkdownRenderEmpty(t *testing.T) {
	r := NewMarkdownRenderer(NewStyles(uistate.ThemeDark))
	assert.Empty(t, r.Render("  \n ", 80))
}

func TestRenderMarkdownCache(t *testing.T) {
	ClearRenderCache()
	defer ClearRenderCache()

	styles := NewStyles(uistate.ThemeDark)
	first := RenderMarkdown(styles, "hello *world*", 40)
	second := RenderMarkdown(styles, "hello *world*", 40)
	assert.Equal(t, first, second)

	cacheMutex.RLock()
	size := len(renderCache)
	cacheMutex.RUnlock()
	assert.Equal(t, 1, size)

	RenderMarkdown(NewStyles(uistate.ThemeLight), "hello *world*", 40)
	cacheMutex.RLock()
	size = len(renderCache)
	cacheMutex.RUnlock()
	assert.Equal(t, 2, size, "themes are cached separately")
}

func TestRenderMarkdownCacheEviction(t *testing.T) {
	ClearRenderCache()
	defer ClearRenderCache()

	styles := NewStyles(uistate.ThemeDark)
	for i := 0; i < cacheMaxSize+10; i++ {
		RenderMarkdown(styles, strings.Repeat("x", i+1), 0)
	}

	cacheMutex.RLock()
	defer cacheMutex.RUnlock()
	assert.LessOrEqual(t, len(renderCache), cacheMaxSize)
}

func TestMarkdownCodeBlockWithoutLanguage(t *testing.T) {
	r := NewMarkdownRenderer(NewStyles(uistate.ThemeDark))

	out := r.Render("```\nplain text block\n```", 0)
	assert.Contains(t, out, "plain text block")
}

func TestHighlightUnknownLanguage(t *testing.T) {
	_, ok := highlight("x", "definitely-not-a-language", true)
	assert.False(t, ok)

	out, ok := highlight("package main", "go", false)
	assert.True(t, ok)
	assert.Contains(t, out, "main")
}
