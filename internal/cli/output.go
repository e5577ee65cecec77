package cli

import (
	"encoding/json"
	"io"

	"github.com/leengari/recordstore/internal/executor"
	"github.com/leengari/recordstore/internal/repl"
)

// StatementOutput is the JSON form of one executed statement.
type StatementOutput struct {
	Statement string           `json:"statement"`
	Message   string           `json:"message,omitempty"`
	Records   []map[string]any `json:"records,omitempty"`
	Error     string           `json:"error,omitempty"`
}

func toOutput(statement string, res *executor.Result, err error) StatementOutput {
	out := StatementOutput{Statement: statement}
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Message = res.Message
	for _, r := range res.Records {
		attrs := r.Attributes()
		attrs["id"] = r.ID()
		out.Records = append(out.Records, attrs)
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeText(w io.Writer, res *executor.Result) {
	repl.PrintResult(w, res)
}
