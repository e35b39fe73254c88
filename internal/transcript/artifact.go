package transcript

import "fmt"

// FromArtifact normalizes raw source material according to its format.
// names maps speaker labels for diarized artifacts.
func FromArtifact(a Artifact, names map[string]string) (Transcript, error) {
	switch a.Format {
	case FormatDiarized:
		return FromUtterances(a.Utterances, names, a.Text), nil
	case FormatCaptions, FormatSubtitle:
		return FromCaptions(string(a.Content)), nil
	case FormatText:
		return FromText(string(a.Content)), nil
	default:
		return Transcript{}, fmt.Errorf("unsupported artifact format %q", a.Format)
	}
}
