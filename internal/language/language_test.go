package language

import "testing"

func TestToISO2(t *testing.T) {
	tests := map[string]string{
		"en":      "en",
		"ENG":     "en",
		"English": "en",
		"en-US":   "en",
		"pt_BR":   "pt",
		"fre":     "fr",
		"chi":     "zh",
		"xx":      "xx",
		"klingon": "",
		"  ":      "",
	}
	for input, want := range tests {
		if got := ToISO2(input); got != want {
			t.Errorf("ToISO2(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"en":    "English",
		"de-AT": "German",
		"xx":    "XX",
		"":      "Unknown",
	}
	for input, want := range tests {
		if got := DisplayName(input); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", input, got, want)
		}
	}
}
