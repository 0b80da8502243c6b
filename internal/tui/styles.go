package tui

import (
	"github.com/Zacy-Sokach/RagChat/internal/uistate"
	"github.com/charmbracelet/lipgloss"
)

// palette 一个主题的全部颜色
type palette struct {
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Accent  lipgloss.Color
	UserBg  lipgloss.Color
	UserFg  lipgloss.Color
	ErrorFg lipgloss.Color
	ErrorBg lipgloss.Color
	Code    lipgloss.Color
	CodeBg  lipgloss.Color
	Link    lipgloss.Color
	Border  lipgloss.Color
	Online  lipgloss.Color
	Offline lipgloss.Color
}

var darkPalette = palette{
	Text:    lipgloss.Color("252"),
	Muted:   lipgloss.Color("244"),
	Accent:  lipgloss.Color("141"),
	UserBg:  lipgloss.Color("61"),
	UserFg:  lipgloss.Color("231"),
	ErrorFg: lipgloss.Color("217"),
	ErrorBg: lipgloss.Color("52"),
	Code:    lipgloss.Color("186"),
	CodeBg:  lipgloss.Color("235"),
	Link:    lipgloss.Color("39"),
	Border:  lipgloss.Color("240"),
	Online:  lipgloss.Color("42"),
	Offline: lipgloss.Color("203"),
}

var lightPalette = palette{
	Text:    lipgloss.Color("235"),
	Muted:   lipgloss.Color("243"),
	Accent:  lipgloss.Color("57"),
	UserBg:  lipgloss.Color("62"),
	UserFg:  lipgloss.Color("231"),
	ErrorFg: lipgloss.Color("124"),
	ErrorBg: lipgloss.Color("224"),
	Code:    lipgloss.Color("94"),
	CodeBg:  lipgloss.Color("254"),
	Link:    lipgloss.Color("25"),
	Border:  lipgloss.Color("250"),
	Online:  lipgloss.Color("28"),
	Offline: lipgloss.Color("160"),
}

// Styles 界面样式，随主题切换整体替换
type Styles struct {
	Theme uistate.Theme

	Header     lipgloss.Style
	Brand      lipgloss.Style
	Status     lipgloss.Style
	Online     lipgloss.Style
	Offline    lipgloss.Style
	Help       lipgloss.Style
	Timestamp  lipgloss.Style
	UserBubble lipgloss.Style
	BotBubble  lipgloss.Style
	ErrBubble  lipgloss.Style
	Typing     lipgloss.Style
	Banner     lipgloss.Style
	Suggestion lipgloss.Style
	Welcome    lipgloss.Style

	// markdown
	Heading    lipgloss.Style
	Bold       lipgloss.Style
	Italic     lipgloss.Style
	Strike     lipgloss.Style
	InlineCode lipgloss.Style
	CodeBlock  lipgloss.Style
	Link       lipgloss.Style
	Quote      lipgloss.Style
	Rule       lipgloss.Style
}

// NewStyles 根据主题生成样式
func NewStyles(theme uistate.Theme) Styles {
	p := darkPalette
	if !theme.IsDark() {
		p = lightPalette
	}

	bubble := lipgloss.NewStyle().Padding(0, 1)

	return Styles{
		Theme: theme,

		Header:     lipgloss.NewStyle().Foreground(p.Text).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).BorderForeground(p.Border),
		Brand:      lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		Status:     lipgloss.NewStyle().Foreground(p.Muted),
		Online:     lipgloss.NewStyle().Foreground(p.Online),
		Offline:    lipgloss.NewStyle().Foreground(p.Offline),
		Help:       lipgloss.NewStyle().Foreground(p.Muted),
		Timestamp:  lipgloss.NewStyle().Foreground(p.Muted),
		UserBubble: bubble.Foreground(p.UserFg).Background(p.UserBg),
		BotBubble:  lipgloss.NewStyle().Foreground(p.Text).BorderStyle(lipgloss.ThickBorder()).BorderLeft(true).BorderForeground(p.Accent).PaddingLeft(1),
		ErrBubble:  lipgloss.NewStyle().Foreground(p.ErrorFg).BorderStyle(lipgloss.ThickBorder()).BorderLeft(true).BorderForeground(p.ErrorFg).PaddingLeft(1),
		Typing:     lipgloss.NewStyle().Foreground(p.Accent),
		Banner:     lipgloss.NewStyle().Foreground(p.ErrorFg).Background(p.ErrorBg).Bold(true).Padding(0, 1),
		Suggestion: lipgloss.NewStyle().Foreground(p.Accent).BorderStyle(lipgloss.RoundedBorder()).BorderForeground(p.Border).Padding(0, 1),
		Welcome:    lipgloss.NewStyle().Foreground(p.Text).Bold(true),

		Heading:    lipgloss.NewStyle().Foreground(p.Accent).Bold(true),
		Bold:       lipgloss.NewStyle().Bold(true),
		Italic:     lipgloss.NewStyle().Italic(true),
		Strike:     lipgloss.NewStyle().Strikethrough(true),
		InlineCode: lipgloss.NewStyle().Foreground(p.Code).Background(p.CodeBg),
		CodeBlock:  lipgloss.NewStyle().Foreground(p.Code).Background(p.CodeBg).Padding(0, 1),
		Link:       lipgloss.NewStyle().Foreground(p.Link).Underline(true),
		Quote:      lipgloss.NewStyle().Foreground(p.Muted).Italic(true),
		Rule:       lipgloss.NewStyle().Foreground(p.Border),
	}
}
