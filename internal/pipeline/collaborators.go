package pipeline

import (
	"fmt"

	"playbridge/internal/config"
	"playbridge/internal/services"
	"playbridge/internal/services/webmeta"
	"playbridge/internal/services/ytdlp"
)

// Collaborators groups the external services a run may call. Any field may be
// nil; the corresponding step then degrades as documented on each step.
type Collaborators struct {
	Metadata   services.MetadataResolver
	Playlists  services.PlaylistResolver
	Downloader services.Downloader
}

// CollaboratorsFromConfig builds the resolvers selected by resolver.backend.
// The downloader always uses yt-dlp because no other backend fetches media.
func CollaboratorsFromConfig(cfg *config.Config) (Collaborators, error) {
	if cfg == nil {
		return Collaborators{}, nil
	}
	client, err := ytdlp.New(cfg.Resolver.YtDlpBinary,
		ytdlp.WithTimeout(cfg.ResolverTimeout()),
		ytdlp.WithAudioFormat(cfg.Download.AudioFormat),
	)
	if err != nil {
		return Collaborators{}, services.Wrap(services.ErrConfiguration, "pipeline", "init yt-dlp", "resolver.ytdlp_binary", err)
	}

	collab := Collaborators{Downloader: client}
	switch cfg.Resolver.Backend {
	case config.BackendYtDlp:
		collab.Metadata = client
		collab.Playlists = client
	case config.BackendHTML:
		collab.Metadata = webmeta.New(
			webmeta.WithUserAgent(cfg.Resolver.UserAgent),
			webmeta.WithTimeout(cfg.ResolverTimeout()),
		)
		collab.Playlists = client
	case config.BackendNone:
	default:
		return Collaborators{}, services.Wrap(services.ErrConfiguration, "pipeline", "init resolver",
			fmt.Sprintf("unknown backend %q", cfg.Resolver.Backend), nil)
	}
	return collab, nil
}
