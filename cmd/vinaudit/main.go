package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"vinaudit/internal/config"
	"vinaudit/pkg/logger"
)

// version 由 -ldflags "-X main.version=..." 注入
var version = "dev"

// app 命令共享的运行时状态
type app struct {
	configPath string
	logLevel   string

	cfg    *config.AppConfig
	info   config.LoadConfigInfo
	logger *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "vinaudit",
		Short: "Fleet VIN audit against the NHTSA vPIC registry",
		Long: `vinaudit reads a vehicle list, repairs common VIN transcription errors,
decodes every VIN against the NHTSA vPIC registry and writes two files:

  <name>_processed.xlsx  every vehicle with decode results and a manual-check flag
  <name>_CAN.csv         deduplicated vehicles usable for the compatibility check`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config.toml path (default: next to the executable)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	root.AddCommand(newProcessCmd(a))
	root.AddCommand(newServeCmd(a))
	root.AddCommand(newVersionCmd())

	return root
}

// init 加载配置并初始化日志
func (a *app) init() error {
	var err error
	if a.configPath != "" {
		a.cfg, a.info, err = config.LoadFile(a.configPath)
	} else {
		a.cfg, a.info, err = config.LoadConfigWithInfo()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if a.logLevel != "" {
		a.cfg.Log.Level = a.logLevel
	}

	a.logger, err = logger.New(logger.Config{
		Level:  a.cfg.Log.Level,
		Format: a.cfg.Log.Format,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func main() {
	// Ctrl-C / SIGTERM 取消正在进行的批处理或优雅关闭服务
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
