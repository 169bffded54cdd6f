package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"playbridge/internal/formats"
	"playbridge/internal/pipeline"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var from, to string
	var expand, noExpand, dedup bool

	cmd := &cobra.Command{
		Use:   "convert <source> [template] <dest>",
		Short: "Convert a playlist collection into another format",
		Long: "Convert reads the source file, detects its format, and writes the destination.\n" +
			"NewPipe and Grayjay output edit a template backup given as the middle argument.\n" +
			"Known formats: freetube, newpipe, grayjay, piped, csv.",
		Args: rangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if expand && noExpand {
				return usageError(cmd, "--expand and --no-expand are mutually exclusive")
			}
			req := pipeline.Request{
				SourcePath: args[0],
				DestPath:   args[len(args)-1],
				From:       from,
				To:         to,
				Dedup:      dedup,
			}
			if len(args) == 3 {
				req.TemplatePath = args[1]
			}
			switch {
			case expand:
				req.Expand = &expand
			case noExpand:
				off := false
				req.Expand = &off
			}

			runner, err := ctx.runner()
			if err != nil {
				return err
			}
			report, err := runner.Convert(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Converted %d playlists (%d items) from %s to %s: %s\n",
				report.Playlists, report.Items, report.SourceFormat, report.TargetFormat, report.OutputPath)
			if report.Expanded > 0 {
				fmt.Fprintf(out, "Expanded %d remote playlists\n", report.Expanded)
			}
			if report.DuplicatesRemoved > 0 {
				fmt.Fprintf(out, "Removed %d duplicate items\n", report.DuplicatesRemoved)
			}
			if report.Warnings > 0 {
				fmt.Fprintf(out, "%d warnings; see the log for details\n", report.Warnings)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Source format (default: detected)")
	cmd.Flags().StringVar(&to, "to", "", "Target format (default: from destination name or template)")
	cmd.Flags().BoolVar(&expand, "expand", false, "Always expand remote playlists into their videos")
	cmd.Flags().BoolVar(&noExpand, "no-expand", false, "Never expand remote playlists")
	cmd.Flags().BoolVar(&dedup, "dedup", false, "Drop videos already seen earlier in the collection")
	registerFormatCompletion(cmd, "from", "to")
	return cmd
}

func registerFormatCompletion(cmd *cobra.Command, flags ...string) {
	names := []string{formats.FreeTube, formats.NewPipe, formats.Grayjay, formats.Piped, formats.CSV}
	for _, flag := range flags {
		_ = cmd.RegisterFlagCompletionFunc(flag, cobra.FixedCompletions(names, cobra.ShellCompDirectiveNoFileComp))
	}
}
