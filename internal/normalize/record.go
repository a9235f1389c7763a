package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RecordText builds the comparable text for a record by joining its
// non-empty field values with a single space. The result is what the
// blocking index and similarity scorer operate on.
func RecordText(fields []string) string {
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		parts = append(parts, field)
	}
	return strings.Join(parts, " ")
}

// CellText coerces a raw cell value to text. Missing or unknown values
// become the empty string rather than failing, so a malformed record can
// still participate in matching.
func CellText(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case time.Time:
		return v.Format("2006-01-02")
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}

// RecordTexts converts a batch of records to comparable text, one entry
// per record in the original order.
func RecordTexts(records [][]string) []string {
	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = RecordText(record)
	}
	return texts
}
