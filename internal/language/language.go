package language

import "strings"

// Each row is ISO 639-1, ISO 639-2 codes, then the English display name.
var table = [][]string{
	{"en", "eng", "English"},
	{"es", "spa", "Spanish"},
	{"fr", "fra", "fre", "French"},
	{"de", "deu", "ger", "German"},
	{"it", "ita", "Italian"},
	{"pt", "por", "Portuguese"},
	{"ja", "jpn", "Japanese"},
	{"ko", "kor", "Korean"},
	{"zh", "zho", "chi", "Chinese"},
	{"ru", "rus", "Russian"},
	{"hi", "hin", "Hindi"},
	{"nl", "nld", "dut", "Dutch"},
	{"pl", "pol", "Polish"},
	{"sv", "swe", "Swedish"},
}

var (
	aliases = map[string]string{}
	display = map[string]string{}
)

func init() {
	for _, row := range table {
		code := row[0]
		name := row[len(row)-1]
		display[code] = name
		for _, alias := range row {
			aliases[strings.ToLower(alias)] = code
		}
	}
}

// ToISO2 maps a code, regional tag ("en-US", "pt_BR") or English language
// name to its two-letter code. Unknown two-letter codes pass through; any
// other unknown input yields "".
func ToISO2(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	if code, ok := aliases[value]; ok {
		return code
	}
	if base, _, found := strings.Cut(strings.ReplaceAll(value, "_", "-"), "-"); found {
		return ToISO2(base)
	}
	if len(value) == 2 {
		return value
	}
	return ""
}

// DisplayName returns the English name for a recognized code, or the
// upper-cased input otherwise.
func DisplayName(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Unknown"
	}
	if name, ok := display[ToISO2(value)]; ok {
		return name
	}
	return strings.ToUpper(strings.TrimSpace(value))
}
