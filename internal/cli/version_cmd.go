package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"nlquery-go/internal/config"
)

func newVersionCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "输出版本信息",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := config.DefaultAppInfo()
			if opts.output == outputJSON {
				return printJSON(cmd.OutOrStdout(), info.GetBuildInfo())
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (commit: %s, %s)\n",
				info.Name, info.Version, info.GitCommit, info.GoVersion)
			return err
		},
	}
}
