package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"nlquery-go/internal/app"
	"nlquery-go/internal/service"
)

func newTranslateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "translate <自然语言>",
		Short: "将自然语言翻译为SQL，不执行",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := contextOrBackground(cmd)
			a, err := app.New(ctx, opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			result := a.Queries().Translate(ctx, strings.Join(args, " "))
			if opts.output == outputJSON {
				if err := printJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
				return result.Err
			}
			if !result.Success {
				return errors.New(result.Message)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), result.SQL)
			return err
		},
	}
}

func newQueryCmd(opts *globalOptions) *cobra.Command {
	var (
		showSQL   bool
		interpret bool
	)

	cmd := &cobra.Command{
		Use:   "query <自然语言>",
		Short: "翻译并执行自然语言查询",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := contextOrBackground(cmd)
			a, err := app.New(ctx, opts.cfg, opts.logger)
			if err != nil {
				return err
			}
			defer a.Close()

			req := service.QueryRequest{
				Query:   strings.Join(args, " "),
				ShowSQL: showSQL,
			}
			if cmd.Flags().Changed("interpret") {
				req.Interpret = &interpret
			}

			result := a.Queries().ExecuteQuery(ctx, req)
			out := cmd.OutOrStdout()
			if opts.output == outputJSON {
				if err := printJSON(out, result); err != nil {
					return err
				}
				return result.Err
			}
			if !result.Success {
				return errors.New(result.Message)
			}

			if result.SQL != "" {
				fmt.Fprintf(out, "SQL: %s\n\n", result.SQL)
			}
			if err := printRows(out, result.Columns, result.Data); err != nil {
				return err
			}
			fmt.Fprintf(out, "\n(%d 行)\n", len(result.Data))
			if result.Interpretation != "" {
				fmt.Fprintf(out, "\n%s\n", result.Interpretation)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showSQL, "show-sql", true, "输出生成的SQL")
	cmd.Flags().BoolVar(&interpret, "interpret", false, "调用大模型解读结果")
	return cmd
}
