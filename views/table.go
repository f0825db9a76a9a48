package views

import (
	"fmt"
	"strconv"
	"strings"

	"median/listview"
)

// Headers returns the column labels.
func (p Page[T]) Headers() []string {
	headers := make([]string, len(p.Columns))
	for i, c := range p.Columns {
		headers[i] = c.Label
	}
	return headers
}

// Table renders rows as text cells in column order.
func (p Page[T]) Table(rows []listview.Row[T]) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(p.Columns))
		for j, c := range p.Columns {
			cells[j] = FormatCell(p.Cell(row, c.Key))
		}
		out[i] = cells
	}
	return out
}

// FormatCell renders one value for a text table.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		if x {
			return "yes"
		}
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []string:
		return strings.Join(x, ", ")
	default:
		return fmt.Sprint(x)
	}
}
