package snowflake

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// timestampColumns are column names whose values carry the warehouse's
// embedded timestamp encoding, matched case-insensitively.
var timestampColumns = map[string]struct{}{
	"CREATED":          {},
	"UPDATED":          {},
	"DUEDATE":          {},
	"RESOLUTIONDATE":   {},
	"ARCHIVEDDATE":     {},
	"CHANGE_TIMESTAMP": {},
	"_FIVETRAN_SYNCED": {},
}

// Sanitize escapes a SQL string literal by doubling single quotes.
// Non-string values are formatted with their default representation.
func Sanitize(value any) string {
	s, ok := value.(string)
	if !ok {
		s = fmt.Sprintf("%v", value)
	}
	return strings.ReplaceAll(s, "'", "''")
}

// DecodeTimestamp parses the warehouse timestamp encoding: epoch seconds
// with an optional fractional part, optionally followed by a
// whitespace-separated minute offset which is applied to the instant.
// Anything beyond the second field is ignored. Unparsable values are
// returned unchanged.
//
//	"1753767533.658000000 1440" -> "2025-07-30T05:38:53.658000+00:00"
func DecodeTimestamp(value string) string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return value
	}

	sec, nsec, ok := parseEpoch(fields[0])
	if !ok {
		return value
	}

	offsetMinutes := 0
	if len(fields) > 1 {
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return value
		}
		offsetMinutes = n
	}

	t := time.Unix(sec, nsec).UTC().Add(time.Duration(offsetMinutes) * time.Minute)
	return t.Format("2006-01-02T15:04:05.000000") + "+00:00"
}

// parseEpoch splits "seconds[.fraction]" into integer seconds and
// nanoseconds without a float round trip, so sub-millisecond precision
// survives.
func parseEpoch(s string) (sec int64, nsec int64, ok bool) {
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	sec, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, 0, false
	}

	if hasFrac {
		if fracPart == "" {
			return 0, 0, false
		}
		// pad or truncate to nanosecond precision
		if len(fracPart) > 9 {
			fracPart = fracPart[:9]
		} else {
			fracPart += strings.Repeat("0", 9-len(fracPart))
		}
		nsec, err = strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return 0, 0, false
		}
	}

	return sec, nsec, true
}

// DecodeRow zips a row's positional values against the column-name list,
// decoding timestamp columns along the way. A length mismatch yields an
// empty record.
func DecodeRow(columns []string, row []any) map[string]any {
	if len(row) != len(columns) {
		return map[string]any{}
	}

	record := make(map[string]any, len(columns))
	for i, col := range columns {
		value := row[i]
		if _, isTS := timestampColumns[strings.ToUpper(col)]; isTS {
			if s, isString := value.(string); isString {
				value = DecodeTimestamp(s)
			}
		}
		record[col] = value
	}
	rowsDecoded.Inc()
	return record
}

// decodeThreshold is the result size above which row decoding fans out to
// a worker pool instead of running inline.
const decodeThreshold = 100

// DecodeRows converts every row to a named-field record, preserving row
// order. Result sets above the threshold are decoded by workers writing to
// stable indices.
func DecodeRows(columns []string, rows [][]any, workers int) []map[string]any {
	records := make([]map[string]any, len(rows))

	if len(rows) <= decodeThreshold || workers <= 1 {
		for i, row := range rows {
			records[i] = DecodeRow(columns, row)
		}
		return records
	}

	indexes := make(chan int, len(rows))
	for i := range rows {
		indexes <- i
	}
	close(indexes)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				records[i] = DecodeRow(columns, rows[i])
			}
		}()
	}
	wg.Wait()

	return records
}
