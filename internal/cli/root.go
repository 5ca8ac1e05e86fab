// Package cli 命令行入口：serve / migrate / translate / query / tables / version
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nlquery-go/internal/config"
)

// globalOptions 根命令的持久化参数
type globalOptions struct {
	configPath string
	envFile    string
	output     string
	logLevel   string

	cfg    *config.AppConfig
	logger *zap.Logger
}

// Execute 运行命令行，返回进程退出码
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "nlquery",
		Short:         "自然语言查询服务",
		Long:          "将中文自然语言翻译为只读SQL并执行，同时提供报表配置管理。",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutputFormat(opts.output); err != nil {
				return err
			}
			if cmd.Name() == "version" {
				return nil
			}
			return opts.load()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML配置文件路径")
	flags.StringVar(&opts.envFile, "env-file", ".env", "环境变量文件，不存在时忽略")
	flags.StringVarP(&opts.output, "output", "o", "table", "输出格式 (table, json)")
	flags.StringVar(&opts.logLevel, "log-level", "", "日志级别，覆盖配置文件")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newTranslateCmd(opts),
		newQueryCmd(opts),
		newTablesCmd(opts),
		newVersionCmd(opts),
	)
	return rootCmd
}

// load 依次加载 .env、配置文件，并创建日志器
func (o *globalOptions) load() error {
	if o.envFile != "" {
		if _, err := config.LoadEnv(o.envFile); err != nil {
			return fmt.Errorf("加载环境变量文件失败: %w", err)
		}
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	logger, err := cfg.Log.BuildLogger()
	if err != nil {
		return err
	}

	o.cfg = cfg
	o.logger = logger
	return nil
}
