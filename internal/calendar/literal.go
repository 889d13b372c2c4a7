package calendar

import (
	"fmt"
	"strings"
	"time"
)

// ParseLiteralDate parses a hand-entered DD/MM/YY date. A four-digit year is
// accepted too, in which case warning describes the expected form; callers
// log it and carry on.
func ParseLiteralDate(s string) (d Day, warning string, err error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2/1/06", s); err == nil {
		return DayOf(t), "", nil
	}
	t, err := time.Parse("2/1/2006", s)
	if err != nil {
		return Day{}, "", fmt.Errorf("invalid date %q: want DD/MM/YY", s)
	}
	return DayOf(t), fmt.Sprintf("date %q uses a four-digit year, expected DD/MM/YY", s), nil
}
