package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"nlquery-go/internal/app"
)

func newMigrateCmd(opts *globalOptions) *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "执行数据库迁移（建表与示例数据）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			storage, err := app.OpenStorage(contextOrBackground(cmd), &opts.cfg.Database, opts.logger)
			if err != nil {
				return err
			}
			defer storage.Close()

			if !statusOnly {
				if err := storage.Migrate(); err != nil {
					return fmt.Errorf("执行数据库迁移失败: %w", err)
				}
			}

			version, err := storage.MigrationVersion()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.output == outputJSON {
				return printJSON(out, map[string]any{
					"driver":  opts.cfg.Database.Driver,
					"version": version,
				})
			}
			_, err = fmt.Fprintf(out, "driver: %s\nversion: %d\n", opts.cfg.Database.Driver, version)
			return err
		},
	}

	cmd.Flags().BoolVar(&statusOnly, "status", false, "只显示当前迁移版本")
	return cmd
}
