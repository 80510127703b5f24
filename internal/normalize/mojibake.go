package normalize

import "strings"

// replacement is one corrupted-sequence -> correct-text substitution.
type replacement struct {
	bad  string
	good string
}

// mojibakeTable lists known double-encoding corruptions in the order they
// must be applied: site-specific multi-character sequences first, then the
// generic three-byte punctuation forms, then the two-byte accented letters
// they would otherwise shadow.
var mojibakeTable = []replacement{
	// Observed on this site (UTF-8 read as MacRoman, plus one plain typo).
	{"Mart√≠n", "Martín"},
	{"Hernàndez", "Hernández"},

	// UTF-8 punctuation read as CP1252.
	{"â€“", "–"},
	{"â€”", "—"},
	{"â€œ", "“"},
	{"â€", "”"},
	{"â€™", "’"},

	// UTF-8 accented letters read as CP1252/Latin-1.
	{"Ã¡", "á"},
	{"Ã©", "é"},
	{"Ã­", "í"},
	{"Ã³", "ó"},
	{"Ãº", "ú"},
	{"Ã±", "ñ"},
	{"Ã", "Á"},
	{"Ã‰", "É"},
	{"Ã", "Í"},
	{"Ã“", "Ó"},
	{"Ãš", "Ú"},
	{"Ã‘", "Ñ"},
}

// RepairMojibake fixes known character-encoding corruption by direct text
// substitution. Display-side only; matching goes through Key instead, which
// is robust to the corruption this repairs.
func RepairMojibake(s string) string {
	if s == "" {
		return s
	}
	for _, r := range mojibakeTable {
		s = strings.ReplaceAll(s, r.bad, r.good)
	}
	return s
}
