package utils

import (
	"os"
	"path/filepath"
)

// AppName 用于配置目录和环境变量前缀
const AppName = "ragchat"

// GetConfigDir 获取跨平台的配置目录
// RAGCHAT_CONFIG_HOME 优先
// Windows: %APPDATA%/ragchat
// Linux/macOS: $XDG_CONFIG_HOME/ragchat 或 ~/.config/ragchat
func GetConfigDir() (string, error) {
	if configHome := os.Getenv("RAGCHAT_CONFIG_HOME"); configHome != "" {
		return configHome, nil
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, AppName), nil
	}

	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, AppName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", AppName), nil
}

// ConfigFile 返回配置目录下的文件路径
func ConfigFile(name string) (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}
