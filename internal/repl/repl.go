// Package repl implements the interactive recordstore shell.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/leengari/recordstore/internal/executor"
)

const help = `Statements:
  ls                                   list collections
  use <collection>                     select a collection
  schema [collection]                  show key and index groups
  verify [collection]                  rebuild and compare indexes
  push [into <collection>] a=v ...     store a new record
  update [collection] key <k> set a=v  change a stored record
  [from <collection>] | stage | ...    query; stages:
      where a=v a__gte=v ...  head [n]  tail [n]  slice <start> <stop>
      lookup <attr[,attr]> <v>  all  count  first  last  key <k>
Type 'exit' or '\q' to quit.`

// Start runs the shell until in is exhausted or the user exits.
func Start(session *executor.Session, in io.Reader, out io.Writer) {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "Welcome to recordstore")
	fmt.Fprintln(out, "Type 'help' for statements, 'exit' or '\\q' to quit.")

	for {
		fmt.Fprint(out, prompt(session))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return
		}
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		if line == "exit" || line == "\\q" {
			break
		}

		if line == "help" || line == "\\h" {
			fmt.Fprintln(out, help)
			continue
		}

		result, err := session.ExecuteString(line)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}

		PrintResult(out, result)
	}
}

func prompt(session *executor.Session) string {
	if session.Current() == "" {
		return "> "
	}
	return session.Current() + "> "
}

func PrintResult(w io.Writer, res *executor.Result) {
	if len(res.Columns) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

		// Header
		fmt.Fprintln(tw, strings.Join(res.Columns, "\t"))

		// Separator
		seps := make([]string, len(res.Columns))
		for i := range seps {
			seps[i] = "---"
		}
		fmt.Fprintln(tw, strings.Join(seps, "\t"))

		// Rows
		for _, r := range res.Records {
			cells := make([]string, len(res.Columns))
			for i, col := range res.Columns {
				if col == "id" {
					cells[i] = fmt.Sprintf("%d", r.ID())
					continue
				}
				val, ok := r.Get(col)
				if !ok || val == nil {
					cells[i] = "NULL"
				} else {
					cells[i] = fmt.Sprintf("%v", val)
				}
			}
			fmt.Fprintln(tw, strings.Join(cells, "\t"))
		}
		tw.Flush()
	}

	if res.Message != "" {
		fmt.Fprintln(w, res.Message)
	}
}
