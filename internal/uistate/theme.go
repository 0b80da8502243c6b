package uistate

import (
	"github.com/Zacy-Sokach/RagChat/internal/storage"
)

// Theme 界面主题
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// ThemeKey 主题在偏好存储中的键
const ThemeKey = "theme"

// DefaultTheme 没有存储值或存储值无效时使用
const DefaultTheme = ThemeDark

// Toggle 返回另一个主题
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// IsDark 是否深色主题
func (t Theme) IsDark() bool {
	return t != ThemeLight
}

// ParseTheme 解析存储的主题值
func ParseTheme(s string) (Theme, bool) {
	switch Theme(s) {
	case ThemeDark:
		return ThemeDark, true
	case ThemeLight:
		return ThemeLight, true
	default:
		return "", false
	}
}

// LoadTheme 从偏好存储中恢复主题，读取失败时回退到默认主题
func LoadTheme(kv storage.KV) Theme {
	if kv == nil {
		return DefaultTheme
	}
	value, ok, err := kv.Get(ThemeKey)
	if err != nil || !ok {
		return DefaultTheme
	}
	if theme, valid := ParseTheme(value); valid {
		return theme
	}
	return DefaultTheme
}
