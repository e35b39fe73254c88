// Package assemblyai submits audio for diarized transcription and polls the
// resulting job. The raw job document is kept alongside the decoded view so
// callers can archive it.
package assemblyai
