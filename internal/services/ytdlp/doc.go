// Package ytdlp wraps the yt-dlp command line tool for search resolution and
// media downloads. All subprocess interaction goes through the Executor
// interface so workflows can be tested without the real binary.
package ytdlp
