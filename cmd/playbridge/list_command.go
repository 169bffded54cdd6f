package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "list <source>",
		Short: "Show the playlists in a file",
		Args:  rangeArgs(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := ctx.runner()
			if err != nil {
				return err
			}
			c, format, err := runner.Load(cmd.Context(), args[0], from)
			if err != nil {
				return err
			}

			headers := []string{"#", "Playlist", "Kind", "Items"}
			rows := make([][]string, 0, c.Len())
			for i, p := range c.Playlists {
				rows = append(rows, []string{strconv.Itoa(i + 1), p.Name, p.Kind.String(), strconv.Itoa(len(p.Items))})
			}

			out := cmd.OutOrStdout()
			if !isTerminal(out) {
				fmt.Fprintln(out, renderTSV(headers, rows))
				return nil
			}
			fmt.Fprintf(out, "%s (%s): %d playlists, %d items\n", args[0], format, c.Len(), c.ItemCount())
			fmt.Fprintln(out, renderTable(headers, rows, []columnAlignment{alignRight, alignLeft, alignLeft, alignRight}))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Source format (default: detected)")
	registerFormatCompletion(cmd, "from")
	return cmd
}
