package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"playbridge/internal/export"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var from, format string

	cmd := &cobra.Command{
		Use:   "export <source> <dir>",
		Short: "Write playlists as M3U8, text, Markdown or JSON listings",
		Args:  rangeArgs(2, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := ctx.runner()
			if err != nil {
				return err
			}
			c, _, err := runner.Load(cmd.Context(), args[0], from)
			if err != nil {
				return err
			}
			paths, err := export.Write(c, args[1], strings.ToLower(strings.TrimSpace(format)))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, path := range paths {
				fmt.Fprintf(out, "Wrote %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Source format (default: detected)")
	cmd.Flags().StringVarP(&format, "format", "f", export.M3U8, "Listing format: "+strings.Join(export.Formats(), ", "))
	registerFormatCompletion(cmd, "from")
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(export.Formats(), cobra.ShellCompDirectiveNoFileComp))
	return cmd
}
