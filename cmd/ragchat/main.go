package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/Zacy-Sokach/RagChat/internal/api"
	"github.com/Zacy-Sokach/RagChat/internal/chat"
	"github.com/Zacy-Sokach/RagChat/internal/config"
	"github.com/Zacy-Sokach/RagChat/internal/logger"
	"github.com/Zacy-Sokach/RagChat/internal/storage"
	"github.com/Zacy-Sokach/RagChat/internal/tui"
	"github.com/Zacy-Sokach/RagChat/internal/uistate"
	"github.com/Zacy-Sokach/RagChat/internal/utils"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	Version = "dev"
)

const prefsFile = "prefs.yaml"

func main() {
	// 处理命令行参数
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "-v", "--version":
			fmt.Printf("RagChat %s\n", Version)
			os.Exit(0)
		case "-h", "--help":
			printHelp()
			os.Exit(0)
		case "--init-config":
			if err := initConfig(); err != nil {
				fmt.Printf("Failed to write config: %v\n", err)
				os.Exit(1)
			}
			os.Exit(0)
		default:
			fmt.Printf("Unknown argument: %s\n\n", os.Args[1])
			printHelp()
			os.Exit(2)
		}
	}

	// os.Exit 不执行 defer，清理都放在 run 里
	os.Exit(run())
}

// run 启动界面并返回退出码
func run() (code int) {
	// 添加panic恢复
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("panic: %v\n", r)
			fmt.Println("stack trace:")
			debug.PrintStack()
			code = 1
		}
	}()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		return 1
	}

	if err := logger.Init(cfg.LogFile, cfg.LogLevel); err != nil {
		// 日志不可用时继续运行
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
	}
	defer logger.Close()
	log := logger.Get()
	log.Info("starting", "version", Version, "base_url", cfg.BaseURL)

	if !isTerminal() {
		fmt.Println("RagChat must be run in an interactive terminal")
		fmt.Printf("Backend: %s\n", cfg.BaseURL)
		return 1
	}

	prefsPath, err := utils.ConfigFile(prefsFile)
	if err != nil {
		fmt.Printf("Failed to resolve config directory: %v\n", err)
		return 1
	}

	client := api.NewClient(cfg.BaseURL)
	ctrl := chat.NewController(chat.NewStore(), client, log)
	prefs := storage.NewFileKV(prefsPath)

	tui.Version = Version
	model := tui.New(tui.Deps{
		Controller: ctrl,
		Prefs:      prefs,
		Health:     client,
		Logger:     log,
		BaseURL:    cfg.BaseURL,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	model.Bind(p)

	// 其他实例切换主题时同步过来
	if watcher, err := prefs.Watch(uistate.ThemeKey, model.OnStoredThemeChanged); err != nil {
		log.Warn("watch prefs failed", "path", prefsPath, "error", err)
	} else {
		defer watcher.Close()
	}

	if _, err := p.Run(); err != nil {
		log.Error("program exited with error", "error", err)
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	log.Info("bye")
	return 0
}

func printHelp() {
	fmt.Println("RagChat - terminal client for a RAG question-answering backend")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ragchat                  Start the interactive TUI")
	fmt.Println("  ragchat --init-config    Write the default config file")
	fmt.Println("  ragchat -v, --version    Show version information")
	fmt.Println("  ragchat -h, --help       Show help information")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Printf("  RAGCHAT_API_URL          Backend base URL (default %s)\n", config.DefaultBaseURL)
	fmt.Println("  VITE_API_URL             Fallback backend base URL")
	fmt.Println("  RAGCHAT_CONFIG_HOME      Override the config directory")
	fmt.Println()
	fmt.Println("Keys in TUI:")
	fmt.Println("  enter                    Send the question")
	fmt.Println("  alt+enter, ctrl+j        Insert a newline")
	fmt.Println("  tab                      Cycle suggested questions")
	fmt.Println("  ctrl+t                   Toggle dark/light theme")
	fmt.Println("  pgup/pgdown              Scroll the conversation")
	fmt.Println("  ctrl+c, esc              Quit")
}

func initConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		cfg = config.Default()
	}
	if err := config.SaveConfig(cfg); err != nil {
		return err
	}
	fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("✓ Config written to " + config.Path()))
	return nil
}

func isTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
