package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"buildboard/internal/config"
	"buildboard/internal/exitcode"
	"buildboard/internal/service"
	"buildboard/internal/sheet"
)

func init() {
	Register(&ColumnsCmd{})
}

// ColumnsCmd lists the columns of the task sheet, or prints a scheme file
// with the column IDs filled in where titles match field names.
type ColumnsCmd struct {
	scheme bool
}

func (c *ColumnsCmd) Name() string      { return "columns" }
func (c *ColumnsCmd) Aliases() []string { return nil }
func (c *ColumnsCmd) Synopsis() string  { return "List sheet columns" }
func (c *ColumnsCmd) Usage() string     { return "buildboard columns [--scheme]" }
func (c *ColumnsCmd) NeedsStore() bool  { return true }
func (c *ColumnsCmd) Unmapped() bool    { return true }

func (c *ColumnsCmd) RegisterFlags(fs *flag.FlagSet) {
	c.scheme = false
	fs.BoolVar(&c.scheme, "scheme", false, "")
}

// SetScheme selects scheme output (for testing).
func (c *ColumnsCmd) SetScheme(on bool) {
	c.scheme = on
}

func (c *ColumnsCmd) Run(ctx context.Context, cfg *config.Config, ws *Workspace, args []string, out, errOut io.Writer) int {
	d, ok := ws.Sheets.Tasks.(service.Describer)
	if !ok {
		fmt.Fprintln(errOut, "error: this backend cannot list columns")
		return exitcode.UserError
	}
	cols, err := d.Columns(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", service.Message(err))
		return exitcode.BackendError
	}

	if !c.scheme {
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTITLE")
		for _, col := range cols {
			fmt.Fprintf(tw, "%d\t%s\t\n", col.ID, col.Title)
		}
		tw.Flush()
		return exitcode.Success
	}

	data, err := yaml.Marshal(DraftScheme("tasks", cols))
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	out.Write(data)
	return exitcode.Success
}

// DraftScheme maps each task field to the column whose title names it, for
// example "Task ID" or "task_id" for the task_id field. Unmatched fields are
// left out.
func DraftScheme(name string, cols []service.Column) sheet.Scheme {
	s := sheet.Scheme{Name: name, Columns: map[string]int64{}}
	for _, f := range sheet.TaskFields() {
		for _, col := range cols {
			if fieldKey(col.Title) == f {
				s.Columns[f] = col.ID
				break
			}
		}
	}
	return s
}

// fieldKey turns a column title into field form: lower case with
// underscores.
func fieldKey(title string) string {
	out := make([]rune, 0, len(title))
	underscore := false
	for _, r := range title {
		switch {
		case r >= 'A' && r <= 'Z':
			r += 'a' - 'A'
			fallthrough
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if underscore && len(out) > 0 {
				out = append(out, '_')
			}
			underscore = false
			out = append(out, r)
		default:
			underscore = true
		}
	}
	return string(out)
}
