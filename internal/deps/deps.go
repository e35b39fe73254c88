// Package deps reports whether external binaries the pipelines shell out to
// are installed.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"transcriptsync/internal/config"
)

// Requirement defines an external binary a set of pipelines relies on.
type Requirement struct {
	Name      string
	Command   string
	Pipelines []string
}

// Status reports the availability of a requirement.
type Status struct {
	Requirement
	Path      string
	Available bool
	Detail    string
}

// ForConfig lists the binaries the configured pipelines execute.
func ForConfig(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:      "yt-dlp",
			Command:   cfg.Captions.YtDlpBinary,
			Pipelines: []string{config.PipelineTranscribe, config.PipelineCaptions},
		},
	}
}

// Check resolves every requirement on PATH.
func Check(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		status := Status{Requirement: req}
		if req.Command == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(req.Command)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", req.Command)
			results = append(results, status)
			continue
		}
		status.Path = path
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Missing returns the first unavailable requirement used by pipeline.
func Missing(statuses []Status, pipeline string) (Status, bool) {
	for _, s := range statuses {
		if s.Available {
			continue
		}
		for _, p := range s.Pipelines {
			if p == pipeline {
				return s, true
			}
		}
	}
	return Status{}, false
}
