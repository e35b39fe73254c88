package transcript

import "strings"

// GuestLabel names speakers missing from the label table.
const GuestLabel = "Guest"

// FromUtterances groups consecutive utterances by speaker into paragraphs
// of the form "**Name:** text". Labels resolve through names (keys are
// upper-case speaker labels); unknown labels render as GuestLabel. With no
// utterances the flat fallback text is used as-is.
func FromUtterances(utterances []Utterance, names map[string]string, fallback string) Transcript {
	var (
		paragraphs []string
		current    string
		buf        []string
	)
	flush := func() {
		if len(buf) > 0 {
			paragraphs = append(paragraphs, "**"+speakerName(current, names)+":** "+strings.Join(buf, " "))
		}
		buf = buf[:0]
	}
	for _, u := range utterances {
		text := strings.Join(strings.Fields(u.Text), " ")
		if text == "" {
			continue
		}
		label := strings.ToUpper(strings.TrimSpace(u.Speaker))
		if label != current || len(buf) == 0 {
			flush()
			current = label
		}
		buf = append(buf, text)
	}
	flush()
	if len(paragraphs) == 0 {
		fallback = strings.Join(strings.Fields(fallback), " ")
		if fallback == "" {
			return Transcript{}
		}
		return Transcript{Lines: []string{fallback}}
	}
	return Transcript{Lines: paragraphs, Speakers: true}
}

func speakerName(label string, names map[string]string) string {
	if name := strings.TrimSpace(names[label]); name != "" {
		return name
	}
	return GuestLabel
}
