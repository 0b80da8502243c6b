package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Zacy-Sokach/RagChat/internal/utils"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultBaseURL 未配置时使用的本地后端地址
const DefaultBaseURL = "http://localhost:8000"

// 环境变量，按优先级排列
var baseURLEnvKeys = []string{"RAGCHAT_API_URL", "VITE_API_URL"}

type Config struct {
	BaseURL  string `yaml:"base_url"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		BaseURL:  DefaultBaseURL,
		LogLevel: "info",
	}
}

// LoadConfig 加载配置，顺序: .env -> config.yaml -> 环境变量
// 程序启动时调用一次，base_url 之后不再变化
func LoadConfig() (*Config, error) {
	// .env 不存在是正常情况
	_ = godotenv.Load()

	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	for _, key := range baseURLEnvKeys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			cfg.BaseURL = v
			break
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFile == "" {
		if p, err := utils.ConfigFile("ragchat.log"); err == nil {
			c.LogFile = p
		}
	}
}

func SaveConfig(config *Config) error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}

// Path 返回配置文件路径，用于提示信息
func Path() string {
	p, err := getConfigPath()
	if err != nil {
		return "config.yaml"
	}
	return p
}

func getConfigPath() (string, error) {
	configPath, err := utils.ConfigFile("config.yaml")
	if err != nil {
		return "", fmt.Errorf("获取配置目录失败: %w", err)
	}
	return configPath, nil
}
