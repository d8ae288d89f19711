package core

import (
	"encoding/json"
	"io"
)

type resultJSON struct {
	Outcome   string   `json:"outcome"`
	Password  string   `json:"password,omitempty"`
	Attempts  int      `json:"attempts"`
	Format    string   `json:"format,omitempty"`
	Extracted []string `json:"extracted,omitempty"`
	Duration  string   `json:"duration"`
}

// MarshalResult pretty-prints a result as JSON for humans or pipelines.
func MarshalResult(w io.Writer, res Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resultJSON{
		Outcome:   res.Outcome.String(),
		Password:  res.Password,
		Attempts:  res.Attempts,
		Format:    res.Format,
		Extracted: res.Extracted,
		Duration:  res.Duration.String(),
	})
}
