package tui

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	bf "github.com/russross/blackfriday/v2"
)

const extensions = bf.CommonExtensions | bf.Strikethrough | bf.Tables

// MarkdownRenderer 把助手回答的 Markdown 渲染为终端文本
type MarkdownRenderer struct {
	styles Styles
}

// NewMarkdownRenderer 创建渲染器
func NewMarkdownRenderer(styles Styles) *MarkdownRenderer {
	return &MarkdownRenderer{styles: styles}
}

// Render 渲染 Markdown，width <= 0 时不折行
func (r *MarkdownRenderer) Render(markdown string, width int) string {
	if strings.TrimSpace(markdown) == "" {
		return ""
	}

	doc := bf.New(bf.WithExtensions(extensions)).Parse([]byte(markdown))
	blocks := r.blocks(doc, width)
	out := strings.Join(blocks, "\n\n")

	// 只清理连续的三个以上换行
	for strings.Contains(out, "\n\n\n") {
		out = strings.ReplaceAll(out, "\n\n\n", "\n\n")
	}
	return out
}

func (r *MarkdownRenderer) blocks(parent *bf.Node, width int) []string {
	var out []string
	for n := parent.FirstChild; n != nil; n = n.Next {
		if s := r.block(n, width); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (r *MarkdownRenderer) block(n *bf.Node, width int) string {
	st := r.styles
	switch n.Type {
	case bf.Paragraph:
		return wrap(r.inline(n), width)

	case bf.Heading:
		prefix := strings.Repeat("#", n.HeadingData.Level) + " "
		return st.Heading.Render(wrap(prefix+r.inline(n), width))

	case bf.CodeBlock:
		code := strings.TrimRight(string(n.Literal), "\n")
		lang := strings.Fields(string(n.CodeBlockData.Info))
		if len(lang) > 0 {
			if highlighted, ok := highlight(code, lang[0], st.Theme.IsDark()); ok {
				return st.CodeBlock.UnsetForeground().Render(highlighted)
			}
		}
		return st.CodeBlock.Render(code)

	case bf.List:
		return r.list(n, width)

	case bf.BlockQuote:
		inner := strings.Join(r.blocks(n, width-2), "\n\n")
		lines := strings.Split(inner, "\n")
		for i, line := range lines {
			lines[i] = st.Quote.Render("│ " + line)
		}
		return strings.Join(lines, "\n")

	case bf.HorizontalRule:
		w := width
		if w <= 0 || w > 40 {
			w = 40
		}
		return st.Rule.Render(strings.Repeat("─", w))

	case bf.Table:
		return r.table(n)

	case bf.HTMLBlock:
		return strings.TrimRight(string(n.Literal), "\n")
	}

	return r.inline(n)
}

func (r *MarkdownRenderer) list(n *bf.Node, width int) string {
	ordered := n.ListData.ListFlags&bf.ListTypeOrdered != 0
	var items []string
	i := 1
	for item := n.FirstChild; item != nil; item = item.Next {
		marker := "• "
		if ordered {
			marker = fmt.Sprintf("%d. ", i)
		}
		indent := strings.Repeat(" ", lipgloss.Width(marker))

		sep := "\n"
		if !n.ListData.Tight {
			sep = "\n\n"
		}
		body := strings.Join(r.blocks(item, width-len(indent)), sep)
		lines := strings.Split(body, "\n")
		for j := range lines {
			if j == 0 {
				lines[j] = marker + lines[j]
			} else if lines[j] != "" {
				lines[j] = indent + lines[j]
			}
		}
		items = append(items, strings.Join(lines, "\n"))
		i++
	}
	return strings.Join(items, "\n")
}

func (r *MarkdownRenderer) table(n *bf.Node) string {
	var rows [][]string
	header := -1
	n.Walk(func(node *bf.Node, entering bool) bf.WalkStatus {
		if !entering {
			return bf.GoToNext
		}
		switch node.Type {
		case bf.TableRow:
			rows = append(rows, nil)
		case bf.TableCell:
			last := len(rows) - 1
			rows[last] = append(rows[last], r.inline(node))
			if node.TableCellData.IsHeader {
				header = last
			}
			return bf.SkipChildren
		}
		return bf.GoToNext
	})

	widths := map[int]int{}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var lines []string
	for ri, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = cell + strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		}
		line := strings.Join(cells, " │ ")
		if ri == header {
			line = r.styles.Bold.Render(line)
		}
		lines = append(lines, line)
		if ri == header {
			var rule []string
			for i := range row {
				rule = append(rule, strings.Repeat("─", widths[i]))
			}
			lines = append(lines, r.styles.Rule.Render(strings.Join(rule, "─┼─")))
		}
	}
	return strings.Join(lines, "\n")
}

func (r *MarkdownRenderer) inline(parent *bf.Node) string {
	st := r.styles
	var sb strings.Builder
	for n := parent.FirstChild; n != nil; n = n.Next {
		switch n.Type {
		case bf.Text, bf.HTMLSpan:
			sb.Write(n.Literal)
		case bf.Softbreak:
			sb.WriteString(" ")
		case bf.Hardbreak:
			sb.WriteString("\n")
		case bf.Code:
			sb.WriteString(st.InlineCode.Render(string(n.Literal)))
		case bf.Emph:
			sb.WriteString(st.Italic.Render(r.inline(n)))
		case bf.Strong:
			sb.WriteString(st.Bold.Render(r.inline(n)))
		case bf.Del:
			sb.WriteString(st.Strike.Render(r.inline(n)))
		case bf.Link:
			text := r.inline(n)
			dest := string(n.LinkData.Destination)
			sb.WriteString(st.Link.Render(text))
			if dest != "" && dest != text {
				sb.WriteString(" (" + dest + ")")
			}
		case bf.Image:
			sb.WriteString("[" + r.inline(n) + "]")
		default:
			sb.WriteString(r.inline(n))
		}
	}
	return sb.String()
}

// highlight 只处理标明语言的代码块，识别不了的语言保持原样
func highlight(code, language string, dark bool) (string, bool) {
	lexer := lexers.Get(language)
	if lexer == nil {
		return "", false
	}
	lexer = chroma.Coalesce(lexer)

	styleName := "monokai"
	if !dark {
		styleName = "friendly"
	}
	style := chromaStyles.Get(styleName)
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", false
	}
	var sb strings.Builder
	if err := formatter.Format(&sb, style, iterator); err != nil {
		return "", false
	}
	return strings.TrimRight(sb.String(), "\n"), true
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

// 渲染缓存，按主题、宽度和内容区分
type renderCacheItem struct {
	content   string
	timestamp time.Time
}

var (
	renderCache  = make(map[string]renderCacheItem)
	cacheMutex   sync.RWMutex
	cacheMaxSize = 256
)

func cacheKey(theme string, width int, markdown string) string {
	h := fnv.New64a()
	h.Write([]byte(markdown))
	return fmt.Sprintf("%s/%d/%x/%d", theme, width, h.Sum64(), len(markdown))
}

// RenderMarkdown 带缓存的渲染，历史消息每次刷新视图都会重新渲染
func RenderMarkdown(styles Styles, markdown string, width int) string {
	if markdown == "" {
		return ""
	}
	key := cacheKey(string(styles.Theme), width, markdown)

	cacheMutex.RLock()
	if item, ok := renderCache[key]; ok {
		cacheMutex.RUnlock()
		return item.content
	}
	cacheMutex.RUnlock()

	result := NewMarkdownRenderer(styles).Render(markdown, width)

	cacheMutex.Lock()
	defer cacheMutex.Unlock()
	// 缓存满时清理最旧的 20%
	if len(renderCache) >= cacheMaxSize {
		type entry struct {
			key string
			at  time.Time
		}
		entries := make([]entry, 0, len(renderCache))
		for k, v := range renderCache {
			entries = append(entries, entry{k, v.timestamp})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].at.Before(entries[j].at) })
		for i := 0; i < max(1, cacheMaxSize/5) && i < len(entries); i++ {
			delete(renderCache, entries[i].key)
		}
	}
	renderCache[key] = renderCacheItem{content: result, timestamp: time.Now()}
	return result
}

// ClearRenderCache 清空渲染缓存
func ClearRenderCache() {
	cacheMutex.Lock()
	renderCache = make(map[string]renderCacheItem)
	cacheMutex.Unlock()
}
