package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coastmove/atoll-dashboard/internal/boundary"
)

// HoverFields are the demographic columns every tooltip lists, in order.
var HoverFields = []string{"Population", "Income", "Floodplain", "Risk_Perce", "Coast_P"}

// HoverText builds the tooltip for one record: the atoll, each hover field
// and the identifier, separated by <br>.
func HoverText(r *boundary.Record, idField string) string {
	var sb strings.Builder
	atoll := r.Atoll
	if atoll == "" {
		atoll = missingValue
	}
	sb.WriteString("Atoll: ")
	sb.WriteString(atoll)

	for _, f := range HoverFields {
		v, _ := r.Value(f)
		fmt.Fprintf(&sb, "<br>%s: %s", f, formatValue(v))
	}

	id, _ := r.Value(idField)
	fmt.Fprintf(&sb, "<br>ID: %s", formatValue(id))
	return sb.String()
}

const missingValue = "N/A"

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return missingValue
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
