package tournamenttime

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Clock abstracts time.Now for tests.
type Clock interface {
	Now() time.Time
}

// RealClock is the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

var (
	ErrEmptyInput    = errors.New("start time is empty")
	ErrUnrecognized  = errors.New("could not recognize time format")
	ErrNotInFuture   = errors.New("start time must be in the future")
	ErrUnknownZone   = errors.New("invalid timezone")
	compactTimeRegex = regexp.MustCompile(`\b(\d{1,2})(\d{2})\s?(am|pm)\b`)
)

// Parser turns admin input like "tomorrow 8pm" into an absolute time.
type Parser struct {
	// Aliases maps abbreviations admins type to IANA zone names.
	Aliases      map[string]string
	DefaultZone  string
	parser       *when.Parser
	fallbackFmts []string
}

// NewParser returns a Parser whose empty timezone input falls back to defaultZone.
func NewParser(defaultZone string) *Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)

	if defaultZone == "" {
		defaultZone = "UTC"
	}
	return &Parser{
		Aliases: map[string]string{
			"UTC":  "UTC",
			"GMT":  "UTC",
			"PST":  "America/Los_Angeles",
			"PDT":  "America/Los_Angeles",
			"MST":  "America/Denver",
			"MDT":  "America/Denver",
			"CST":  "America/Chicago",
			"CDT":  "America/Chicago",
			"EST":  "America/New_York",
			"EDT":  "America/New_York",
			"CET":  "Europe/Madrid",
			"CEST": "Europe/Madrid",
		},
		DefaultZone: defaultZone,
		parser:      w,
		fallbackFmts: []string{
			time.RFC3339,
			"2006-01-02 15:04",
			"2006-01-02T15:04",
			"02/01/2006 15:04",
		},
	}
}

// Location resolves an alias or IANA name. Empty input means the default zone.
func (p *Parser) Location(zone string) (*time.Location, error) {
	zone = strings.TrimSpace(zone)
	if zone == "" {
		zone = p.DefaultZone
	}
	if full, ok := p.Aliases[strings.ToUpper(zone)]; ok {
		zone = full
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownZone, zone)
	}
	return loc, nil
}

// ParseStartTime parses input relative to clock in zone and returns a UTC time
// truncated to the minute. Times that are not after now are rejected.
func (p *Parser) ParseStartTime(input, zone string, clock Clock) (time.Time, error) {
	loc, err := p.Location(zone)
	if err != nil {
		return time.Time{}, err
	}

	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return time.Time{}, ErrEmptyInput
	}
	input = strings.ReplaceAll(input, "today ", "today at ")
	input = compactTimeRegex.ReplaceAllString(input, "$1:$2 $3")

	now := clock.Now().In(loc)

	parsed, ok := p.parseLayouts(input, loc)
	if !ok {
		r, err := p.parser.Parse(input, now)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %s: %v", ErrUnrecognized, input, err)
		}
		if r == nil {
			return time.Time{}, fmt.Errorf("%w: %s", ErrUnrecognized, input)
		}
		parsed = r.Time.In(loc)
	}

	parsed = parsed.Truncate(time.Minute)
	if !parsed.After(now.Truncate(time.Minute)) {
		return time.Time{}, fmt.Errorf("%w (parsed: %s, now: %s)", ErrNotInFuture, parsed.Format(time.RFC3339), now.Format(time.RFC3339))
	}
	return parsed.UTC(), nil
}

func (p *Parser) parseLayouts(input string, loc *time.Location) (time.Time, bool) {
	for _, layout := range p.fallbackFmts {
		if t, err := time.ParseInLocation(layout, strings.ToUpper(input), loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
