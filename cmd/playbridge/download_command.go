package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"playbridge/internal/deps"
	"playbridge/internal/playlist"
	"playbridge/internal/services"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var from, audioFormat, only string

	cmd := &cobra.Command{
		Use:   "download <source> <dir>",
		Short: "Download every video as audio into one folder per playlist",
		Args:  rangeArgs(2, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("audio-format") {
				cfg.Download.AudioFormat = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(audioFormat)), ".")
				if err := cfg.Validate(); err != nil {
					return usageError(cmd, "%v", err)
				}
			}
			ytdlp := deps.CheckBinaries(deps.Requirements(cfg)[:1])[0]
			if !ytdlp.Available {
				return services.Wrap(services.ErrConfiguration, "download", "check yt-dlp", ytdlp.Detail, nil)
			}
			runner, err := ctx.runner()
			if err != nil {
				return err
			}
			c, _, err := runner.Load(cmd.Context(), args[0], from)
			if err != nil {
				return err
			}
			if only != "" {
				if c = selectPlaylist(c, only); c.Len() == 0 {
					return usageError(cmd, "no playlist named %q in %s", only, args[0])
				}
			}

			report, err := runner.Download(cmd.Context(), c, args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %d, skipped %d existing, %d failed\n",
				report.Downloaded, report.Skipped, report.Failed)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Source format (default: detected)")
	cmd.Flags().StringVar(&audioFormat, "audio-format", "", "Audio format: mp3, aac, m4a, mp4, flac, wav, opus (default from download.audio_format)")
	cmd.Flags().StringVar(&only, "playlist", "", "Download only the playlist with this name")
	registerFormatCompletion(cmd, "from")
	return cmd
}

func selectPlaylist(c *playlist.Collection, name string) *playlist.Collection {
	selected := &playlist.Collection{}
	for _, p := range c.Playlists {
		if p.Name == name {
			selected.Append(p)
		}
	}
	return selected
}
