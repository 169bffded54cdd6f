package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"playbridge/internal/fileutil"
	"playbridge/internal/formats"
	"playbridge/internal/services"
)

func newTemplateCommand() *cobra.Command {
	templateCmd := &cobra.Command{
		Use:         "template",
		Short:       "Create empty template backups for archive formats",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}
	templateCmd.AddCommand(newNewPipeTemplateCommand())
	return templateCmd
}

func newNewPipeTemplateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "newpipe <dest.zip>",
		Short: "Write an empty NewPipe backup usable as a convert template",
		Args:  rangeArgs(1, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := formats.NewPipeTemplate(cmd.Context())
			if err != nil {
				return err
			}
			if err := fileutil.WriteFileAtomic(args[0], data, 0o644); err != nil {
				return services.Wrap(services.ErrExternalTool, "template", "write", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote NewPipe template to %s\n", args[0])
			return nil
		},
	}
}
