package sheets

import (
	"fmt"
	"math"
	"strings"
	"time"

	"loanbook/internal/core"
	"loanbook/internal/loanbook"
)

// serialEpoch is day zero of spreadsheet serial dates.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// parseRows converts a values matrix into raw entries keyed by the header
// row. Header names are lower-cased and trimmed. Blank rows are skipped;
// blank cells are left out of the entry. Numeric cells keep their type,
// except serial numbers under the date headers, which become YYYY-MM-DD.
func parseRows(values [][]interface{}) []core.RawEntry {
	if len(values) == 0 {
		return nil
	}
	headers := toStrings(values[0])
	for i, h := range headers {
		headers[i] = strings.ToLower(h)
	}

	entries := make([]core.RawEntry, 0, len(values)-1)
	for _, row := range values[1:] {
		e := core.RawEntry{}
		for col, cell := range row {
			key := safeGet(headers, col)
			if key == "" || isBlank(cell) {
				continue
			}
			switch v := cell.(type) {
			case string:
				cell = strings.TrimSpace(v)
			case float64:
				if isDateHeader(key) {
					cell = serialDate(v)
				}
			}
			e[key] = cell
		}
		if len(e) == 0 {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

func isDateHeader(key string) bool {
	return key == loanbook.FieldStartDate || key == loanbook.FieldMaturityDate
}

// serialDate converts a spreadsheet serial day count to a date string.
// The time of day fraction is dropped.
func serialDate(serial float64) string {
	return serialEpoch.AddDate(0, 0, int(math.Floor(serial))).Format(time.DateOnly)
}

func isBlank(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
