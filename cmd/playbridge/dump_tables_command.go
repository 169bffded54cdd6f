package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"playbridge/internal/formats"
	"playbridge/internal/newpipedb"
	"playbridge/internal/services"
)

func newDumpTablesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "dump-tables <newpipe.db|backup.zip> <dir>",
		Short: "Write every table of a NewPipe database as CSV",
		Args:  rangeArgs(2, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				if os.IsNotExist(err) {
					return usageError(cmd, "%s does not exist", args[0])
				}
				return services.Wrap(services.ErrSourceFormat, "dump-tables", "read", args[0], err)
			}
			db, err := formats.NewPipeDatabase(data, cfg.Archive.MaxDatabaseBytes)
			if err != nil {
				return err
			}

			var paths []string
			err = newpipedb.Inspect(cmd.Context(), db, func(conn *sql.DB) error {
				var dumpErr error
				paths, dumpErr = newpipedb.DumpTables(cmd.Context(), conn, args[1])
				return dumpErr
			})
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
}
