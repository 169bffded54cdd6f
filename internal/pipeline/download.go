package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"playbridge/internal/fileutil"
	"playbridge/internal/logging"
	"playbridge/internal/playlist"
	"playbridge/internal/services"
	"playbridge/internal/textutil"
)

// DownloadReport counts the outcome of a download run.
type DownloadReport struct {
	Downloaded int
	Skipped    int
	Failed     int
}

// Download fetches every local item into dir/<playlist>/ as audio. Items whose
// file already exists are skipped, and each download is followed by the
// configured throttle. Per-item failures are warnings.
func (r *Runner) Download(ctx context.Context, c *playlist.Collection, dir string) (*DownloadReport, error) {
	if r.collab.Downloader == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "download", "no downloader configured", nil)
	}
	logger := logging.NewComponentLogger(r.logger, "download")
	format := r.cfg.Download.AudioFormat
	throttle := r.cfg.DownloadThrottle()
	report := &DownloadReport{}

	for _, p := range c.Playlists {
		pctx := services.WithPlaylist(ctx, p.Name)
		plog := logging.WithContext(pctx, logger)
		if p.Kind == playlist.KindRemote {
			logging.WarnWithContext(plog, "remote playlist not downloaded", "download_remote_skipped",
				logging.String(logging.FieldURL, p.Items[0].URL),
				logging.String(logging.FieldErrorHint, "convert with --expand first"),
			)
			continue
		}
		dest := filepath.Join(dir, textutil.SanitizeFileName(p.Name))
		if err := os.MkdirAll(dest, 0o755); err != nil {
			return report, services.Wrap(services.ErrExternalTool, "pipeline", "download", dest, err)
		}
		for _, item := range p.Items {
			if existing := r.existingFile(pctx, dest, item, format); existing != "" {
				plog.Info("already downloaded", logging.String("path", existing))
				report.Skipped++
				continue
			}
			plog.Info("downloading", logging.String(logging.FieldURL, item.URL))
			path, err := r.collab.Downloader.Download(pctx, item.URL, dest)
			if err != nil {
				if ctx.Err() != nil {
					return report, ctx.Err()
				}
				logging.WarnWithContext(plog, "download failed", "download_failed",
					logging.String(logging.FieldURL, item.URL),
					logging.Error(err),
					logging.String(logging.FieldImpact, "item missing from the download directory"),
				)
				report.Failed++
				continue
			}
			report.Downloaded++
			plog.Debug("downloaded", logging.String("path", path))
			if err := r.sleep(ctx, throttle); err != nil {
				return report, err
			}
		}
	}
	return report, nil
}

// existingFile returns the expected output path when the item's title is
// known and that file is already present.
func (r *Runner) existingFile(ctx context.Context, dest string, item playlist.Item, format string) string {
	title := ""
	if item.HasTitle() {
		title = item.Metadata.Title
	} else if r.collab.Metadata != nil {
		if meta, err := r.collab.Metadata.Resolve(ctx, item.URL); err == nil && meta != nil {
			title = meta.Title
		}
	}
	if title == "" {
		return ""
	}
	path := filepath.Join(dest, textutil.SanitizeFileName(title)+"."+format)
	if ok, err := fileutil.Exists(path); err == nil && ok {
		return path
	}
	return ""
}
