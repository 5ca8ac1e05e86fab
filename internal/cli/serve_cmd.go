package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"nlquery-go/internal/app"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动HTTP服务",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				opts.cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(contextOrBackground(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			opts.logger.Info("nlquery 服务启动中",
				zap.String("addr", opts.cfg.Server.Address()),
				zap.String("translator", opts.cfg.Query.Translator))
			return a.Serve(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "监听端口，覆盖配置文件")
	return cmd
}

// contextOrBackground cobra 未设置上下文时返回 Background
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
