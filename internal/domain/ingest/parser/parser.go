// Package parser converts raw spreadsheet cell values into canonical dates
// and kopeck amounts. Both parsers are deliberately forgiving: a value that
// cannot be parsed resolves to the zero value, never to an error, so one
// malformed row cannot abort ingestion of the rest of the file.
package parser

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/vloginova/finledger/internal/domain/ingest/grid"
)

// Date formats seen across clinic exports, most specific first.
var dateFormats = []string{
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
	"2.1.2006",
	"02.01.06",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Excel stores dates as days since 1899-12-30 (the 1900 leap-year bug is
// baked into the epoch).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseDate converts a cell into a timestamp. Numeric cells are treated as
// Excel serial dates; string cells go through the format table. Returns the
// zero time when nothing matches.
func ParseDate(c grid.Cell) time.Time {
	switch c.Kind {
	case grid.CellNumber:
		return fromSerial(c.Number)
	case grid.CellString:
		t, _ := ParseDateString(c.Text)
		return t
	}
	return time.Time{}
}

// ParseDateString parses a date string against the known format table.
func ParseDateString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, format := range dateFormats {
		if t, err := time.ParseInLocation(format, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func fromSerial(serial float64) time.Time {
	// Serial values below ~1905 or absurdly far in the future are plain
	// numbers that happened to land in a date column.
	if serial < 2000 || serial > 80000 {
		return time.Time{}
	}
	days := int(serial)
	frac := serial - float64(days)
	return excelEpoch.AddDate(0, 0, days).Add(time.Duration(math.Round(frac * 24 * float64(time.Hour))))
}

// Characters stripped from amount strings before separator analysis:
// currency symbols plus the space family (regular, NBSP, narrow NBSP) used
// as thousands separators.
const amountNoise = "₽$€   "

// ParseAmount converts a cell into signed kopecks. Handles "1 234,56",
// "1,234.56", "1234.56" and currency-suffixed values; anything unparseable
// resolves to zero.
func ParseAmount(c grid.Cell) int64 {
	switch c.Kind {
	case grid.CellNumber:
		return int64(math.Round(c.Number * 100))
	case grid.CellString:
		return parseAmountString(c.Text)
	}
	return 0
}

func parseAmountString(raw string) int64 {
	s := strings.TrimSpace(strings.ToLower(raw))
	for _, suffix := range []string{"руб.", "руб", "р."} {
		s = strings.TrimSuffix(s, suffix)
	}
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(amountNoise, r) {
			continue
		}
		b.WriteRune(r)
	}
	s = b.String()
	if s == "" {
		return 0
	}

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		// The right-most separator is the decimal point.
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			// Multiple commas can only be thousands separators.
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0 && strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	kopecks := int64(math.Round(val * 100))
	if negative {
		kopecks = -kopecks
	}
	return kopecks
}
