package datasource

import "strings"

var teamAbbreviations = map[string]string{
	"ne":  "new england patriots",
	"gb":  "green bay packers",
	"sf":  "san francisco 49ers",
	"tb":  "tampa bay buccaneers",
	"kc":  "kansas city chiefs",
	"la":  "los angeles rams",
	"lv":  "las vegas raiders",
	"pit": "pittsburgh steelers",
	"dal": "dallas cowboys",
	"nyg": "new york giants",
	"nyj": "new york jets",
	"phi": "philadelphia eagles",
	"was": "washington commanders",
}

var nameReplacer = strings.NewReplacer(" football", "", " fc", "", "(", "", ")", "", ".", "")

// NormalizeTeamName lowercases a team name, expands known abbreviations and strips
// suffixes that vary between providers.
func NormalizeTeamName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if full, ok := teamAbbreviations[n]; ok {
		return full
	}
	n = nameReplacer.Replace(n)
	n = strings.TrimPrefix(n, "fc ")
	return strings.Join(strings.Fields(n), " ")
}

// TeamsMatch reports whether two provider spellings refer to the same team
func TeamsMatch(a, b string) bool {
	na, nb := NormalizeTeamName(a), NormalizeTeamName(b)
	if na == "" || nb == "" {
		return false
	}
	return na == nb || strings.Contains(na, nb) || strings.Contains(nb, na)
}
