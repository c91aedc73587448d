package tournamentservice

import (
	"strings"
	"unicode"
	"unicode/utf8"

	tournamentdomain "github.com/axi1912/Easy-Customs/app/modules/tournament/domain"
)

// TeamRules bounds admin-registered team names and tags.
type TeamRules struct {
	MinNameLength int
	MaxNameLength int
	MaxTagLength  int
}

var DefaultTeamRules = TeamRules{MinNameLength: 2, MaxNameLength: 32, MaxTagLength: 6}

func (r TeamRules) withDefaults() TeamRules {
	if r.MinNameLength <= 0 {
		r.MinNameLength = DefaultTeamRules.MinNameLength
	}
	if r.MaxNameLength <= 0 {
		r.MaxNameLength = DefaultTeamRules.MaxNameLength
	}
	if r.MaxTagLength <= 0 {
		r.MaxTagLength = DefaultTeamRules.MaxTagLength
	}
	return r
}

// Validate returns the trimmed name and tag, or InvalidTeamName / InvalidTeamTag.
// An empty tag is allowed.
func (r TeamRules) Validate(name, tag string) (string, string, error) {
	name = strings.Join(strings.Fields(name), " ")
	n := utf8.RuneCountInString(name)
	if n < r.MinNameLength || n > r.MaxNameLength {
		return "", "", tournamentdomain.NewError(tournamentdomain.KindInvalidTeamName,
			"team name must be between %d and %d characters", r.MinNameLength, r.MaxNameLength)
	}
	for _, c := range name {
		if !unicode.IsPrint(c) {
			return "", "", tournamentdomain.NewError(tournamentdomain.KindInvalidTeamName,
				"team name contains characters that cannot be displayed")
		}
	}

	tag = strings.TrimSpace(tag)
	if tag == "" {
		return name, "", nil
	}
	if utf8.RuneCountInString(tag) > r.MaxTagLength {
		return "", "", tournamentdomain.NewError(tournamentdomain.KindInvalidTeamTag,
			"team tag must be at most %d characters", r.MaxTagLength)
	}
	for _, c := range tag {
		if c > unicode.MaxASCII || !(unicode.IsLetter(c) || unicode.IsDigit(c)) {
			return "", "", tournamentdomain.NewError(tournamentdomain.KindInvalidTeamTag,
				"team tag may only contain letters and digits")
		}
	}
	return name, tag, nil
}
