package charts

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/desertthunder/chartx/internal/models"
	"github.com/desertthunder/chartx/internal/shared"
)

var (
	NinetiesStart   = day(1990, time.January, 1)
	NinetiesEnd     = day(1999, time.December, 31)
	HistoricalStart = day(1950, time.January, 1)
)

// historicalLag is how far back from today the random historical range stops.
const historicalLag = 5

// Selection names the rule [ResolveDate] used.
type Selection int

const (
	SelectLatest Selection = iota
	SelectExplicit
	SelectRandom90s
	SelectRandomHistorical
)

func (s Selection) String() string {
	switch s {
	case SelectLatest:
		return "latest"
	case SelectExplicit:
		return "explicit"
	case SelectRandom90s:
		return "random-90s"
	case SelectRandomHistorical:
		return "random-historical"
	default:
		return ""
	}
}

// DateOptions holds the raw date selectors from the command line.
type DateOptions struct {
	Date             string
	Random90s        bool
	RandomHistorical bool
}

// Conflicting reports whether more than one selector was supplied.
func (o DateOptions) Conflicting() bool {
	n := 0
	for _, set := range []bool{strings.TrimSpace(o.Date) != "", o.Random90s, o.RandomHistorical} {
		if set {
			n++
		}
	}
	return n > 1
}

// ResolveDate returns the chart date selected by opts.
//
// Precedence is explicit date > random 90s > random historical > latest. The latest chart is
// returned as the zero [time.Time]. now anchors "today"; rng drives the random selectors.
func ResolveDate(opts DateOptions, now time.Time, rng *rand.Rand) (time.Time, Selection, error) {
	today := Today(now)

	switch {
	case strings.TrimSpace(opts.Date) != "":
		d, err := ParseDate(opts.Date, today)
		if err != nil {
			return time.Time{}, SelectExplicit, err
		}
		return d, SelectExplicit, nil
	case opts.Random90s:
		return Random90sDate(rng), SelectRandom90s, nil
	case opts.RandomHistorical:
		return RandomHistoricalDate(today, rng), SelectRandomHistorical, nil
	default:
		return time.Time{}, SelectLatest, nil
	}
}

// ParseDate parses a YYYY-MM-DD date and checks it lies between [HistoricalStart] and today.
func ParseDate(s string, today time.Time) (time.Time, error) {
	d, err := time.Parse(models.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", shared.ErrInvalidDate, s)
	}

	if d.Before(HistoricalStart) || d.After(today) {
		return time.Time{}, fmt.Errorf("%w: %s is outside the supported range %s to %s",
			shared.ErrInvalidDate, d.Format(models.DateLayout),
			HistoricalStart.Format(models.DateLayout), today.Format(models.DateLayout))
	}

	return d, nil
}

// Random90sDate draws a date uniformly from 1990-01-01 through 1999-12-31.
func Random90sDate(rng *rand.Rand) time.Time {
	return randomDate(NinetiesStart, NinetiesEnd, rng)
}

// RandomHistoricalDate draws a date uniformly from 1950-01-01 through five years before today.
func RandomHistoricalDate(today time.Time, rng *rand.Rand) time.Time {
	return randomDate(HistoricalStart, HistoricalEnd(today), rng)
}

// HistoricalEnd is the last date [RandomHistoricalDate] can return.
func HistoricalEnd(today time.Time) time.Time {
	return Today(today).AddDate(-historicalLag, 0, 0)
}

// Today truncates now to its calendar date, expressed in UTC.
func Today(now time.Time) time.Time {
	return day(now.Year(), now.Month(), now.Day())
}

// NewRand returns a generator seeded from the runtime's entropy source.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func randomDate(start, end time.Time, rng *rand.Rand) time.Time {
	if rng == nil {
		rng = NewRand()
	}
	days := int(end.Sub(start).Hours() / 24)
	if days <= 0 {
		return start
	}
	return start.AddDate(0, 0, rng.IntN(days+1))
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}
