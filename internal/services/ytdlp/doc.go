// Package ytdlp wraps the yt-dlp command line tool.
//
// The Client resolves single-video metadata (-J --no-playlist), flattens remote
// playlists into ordered video URLs (-J --flat-playlist), and downloads audio
// for the download command. Command execution goes through the Executor
// interface so tests can replay canned JSON without the binary installed.
package ytdlp
