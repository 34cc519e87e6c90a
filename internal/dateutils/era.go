package dateutils

import (
	"regexp"
	"strconv"
	"strings"
)

// Era is a Japanese imperial era. Gregorian year = Offset + era year.
type Era struct {
	Name   string
	Letter string
	Offset int
}

var (
	Reiwa  = Era{Name: "令和", Letter: "R", Offset: 2018}
	Heisei = Era{Name: "平成", Letter: "H", Offset: 1988}
	Showa  = Era{Name: "昭和", Letter: "S", Offset: 1925}

	eras = []Era{Reiwa, Heisei, Showa}
)

var (
	// 令和7年4月28日, R7.4.28, H31/4/30, 令和元年5月1日
	namedEraPattern = regexp.MustCompile(`^(令和|平成|昭和|[RHSrhs])(元|\d{1,2})[年./-](\d{1,2})[月./-](\d{1,2})日?$`)
	// 7年4月28日: digit year without era name
	bareEraPattern = regexp.MustCompile(`^(\d{1,2})年(\d{1,2})月(\d{1,2})日?$`)
	// 07-428, 07-1231: era year, then month and day run together
	compactEraPattern = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})(\d{2})$`)
	// 07.04.28, 25/04/28: two-digit year, era or Gregorian
	shortYearPattern = regexp.MustCompile(`^(\d{2})[./-](\d{1,2})[./-](\d{1,2})$`)
	// 4/28, 4月28日: no year at all
	monthDayPattern = regexp.MustCompile(`^(\d{1,2})[月./-](\d{1,2})日?$`)
)

func eraByToken(token string) (Era, bool) {
	for _, e := range eras {
		if token == e.Name || strings.EqualFold(token, e.Letter) {
			return e, true
		}
	}
	return Era{}, false
}

func eraYear(token string) int {
	if token == "元" {
		return 1
	}
	n, _ := strconv.Atoi(token)
	return n
}

// resolveYear picks, among candidate Gregorian years, the latest one not after
// anchorYear. When every candidate lies in the future the earliest is used.
func resolveYear(candidates []int, anchorYear int) int {
	best, earliest := 0, 0
	for i, y := range candidates {
		if i == 0 || y < earliest {
			earliest = y
		}
		if y <= anchorYear && y > best {
			best = y
		}
	}
	if best == 0 {
		return earliest
	}
	return best
}

// EraToGregorian resolves a bare era year (no era name printed) against the
// anchor year: Reiwa is preferred while it does not land after the anchor,
// otherwise Heisei.
func EraToGregorian(year, anchorYear int) int {
	return resolveYear([]int{Reiwa.Offset + year, Heisei.Offset + year}, anchorYear)
}

// ShortYearToGregorian resolves a two-digit year that may be an era year or
// the last two digits of a Gregorian year.
func ShortYearToGregorian(year, anchorYear int) int {
	return resolveYear([]int{Reiwa.Offset + year, Heisei.Offset + year, 2000 + year}, anchorYear)
}
