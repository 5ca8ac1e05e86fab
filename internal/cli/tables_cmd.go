package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"nlquery-go/internal/app"
)

func newTablesCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables [表名]",
		Short: "列出可查询的表，指定表名时列出字段",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(contextOrBackground(cmd), opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			snap := a.Catalog().Snapshot()
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				tables := snap.Tables()
				if opts.output == outputJSON {
					return printJSON(out, tables)
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tNATURAL NAME\tDESCRIPTION")
				for _, t := range tables {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", t.DBName, t.NaturalName, t.Description)
				}
				fmt.Fprintf(tw, "\n来源: %s\n", snap.Source())
				return tw.Flush()
			}

			columns, ok := snap.Columns(args[0])
			if !ok {
				return fmt.Errorf("表不存在: %s", args[0])
			}
			if opts.output == outputJSON {
				return printJSON(out, columns)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tNATURAL NAME\tTYPE")
			for _, c := range columns {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", c.DBName, c.NaturalName, c.DataType)
			}
			return tw.Flush()
		},
	}
}
