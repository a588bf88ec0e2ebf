// Package sheet maps build requests to and from the rows of a remote
// spreadsheet-style store.
package sheet

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// TeamDelimiter separates member names inside a team cell.
const TeamDelimiter = ", "

// Row is the store's unit of storage.
type Row struct {
	// ID is the store-assigned row identifier. Omitted when appending.
	ID    int64  `json:"id,omitempty"`
	Cells []Cell `json:"cells"`
}

// Cell is one column value of a row.
type Cell struct {
	ColumnID int64 `json:"columnId"`
	Value    any   `json:"value"`
}

// Value returns the value of the first cell for column, if any.
func (r Row) Value(column int64) (any, bool) {
	for _, c := range r.Cells {
		if c.ColumnID == column {
			return c.Value, true
		}
	}
	return nil, false
}

// Truthy reports whether v carries data: nil, "", 0 and false do not.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}

// Text coerces a cell value to text. Falsy values become "".
func Text(v any) string {
	if !Truthy(v) {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// Int coerces a cell value to an integer. Text is read up to the first
// non-digit; anything without a leading integer yields 0.
func Int(v any) int {
	switch x := v.(type) {
	case float64:
		return int(x)
	case int:
		return x
	case int64:
		return int(x)
	case json.Number:
		return leadingInt(x.String())
	case string:
		return leadingInt(x)
	default:
		return 0
	}
}

// Float coerces a cell value to a float. Non-numeric values yield 0.
func Float(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case json.Number:
		f, _ := x.Float64()
		return f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return float64(leadingInt(x))
		}
		return f
	default:
		return 0
	}
}

func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// TeamValue normalizes a team value that may arrive as a delimited string, a
// list, or nothing at all. The result is never nil.
func TeamValue(v any) []string {
	switch x := v.(type) {
	case nil:
		return []string{}
	case string:
		out := []string{}
		for _, name := range strings.Split(x, TeamDelimiter) {
			if name != "" {
				out = append(out, name)
			}
		}
		return out
	case []string:
		out := make([]string, 0, len(x))
		for _, s := range x {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			if s := Text(e); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := Text(v); s != "" {
			return []string{s}
		}
		return []string{}
	}
}

// JoinTeam renders a team for a single cell. TeamValue reads the cell back
// unchanged only when every name passes CheckTeam.
func JoinTeam(team []string) string {
	return strings.Join(team, TeamDelimiter)
}

// CheckTeam rejects blank names and names containing a comma, which a team
// cell cannot hold.
func CheckTeam(team []string) error {
	for _, name := range team {
		if strings.TrimSpace(name) == "" {
			return errors.New("team member name is blank")
		}
		if strings.Contains(name, ",") {
			return fmt.Errorf("team member name %q contains a comma", name)
		}
	}
	return nil
}
