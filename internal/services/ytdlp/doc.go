// Package ytdlp drives the yt-dlp binary for the two video platform
// operations transcriptsync needs: resolving a direct audio stream URL for
// transcription and downloading the auto-generated caption track.
package ytdlp
