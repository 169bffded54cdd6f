package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"playbridge/internal/config"
)

// Requirement defines an external binary playbridge may call.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the binaries the configuration relies on. yt-dlp is
// required when it backs metadata resolution; otherwise only the download
// command needs it.
func Requirements(cfg *config.Config) []Requirement {
	ytdlpBinary := "yt-dlp"
	ytdlpOptional := true
	if cfg != nil {
		ytdlpBinary = cfg.Resolver.YtDlpBinary
		ytdlpOptional = cfg.Resolver.Backend != config.BackendYtDlp
	}
	return []Requirement{
		{
			Name:        "yt-dlp",
			Command:     ytdlpBinary,
			Description: "metadata, playlist expansion and downloads",
			Optional:    ytdlpOptional,
		},
		{
			Name:        "ffmpeg",
			Command:     "ffmpeg",
			Description: "audio extraction during downloads",
			Optional:    true,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Missing returns the unavailable, non-optional entries of statuses.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}
