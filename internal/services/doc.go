// Package services defines shared utilities consumed by the conversion pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, pipeline steps, and playlist names
//     for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into usage, source-format, size-limit, and external-tool errors, and the
//     ExitCode mapping the CLI reports.
//   - The collaborator contracts (metadata resolver, playlist resolver,
//     downloader) implemented by the ytdlp and webmeta subpackages.
//
// Per-item failures never surface as errors from these helpers; callers log
// them as warnings and degrade locally.
package services
