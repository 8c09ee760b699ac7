package cli

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"athenaq/internal/format"
)

// skipResolve replaces the root PersistentPreRunE for commands that do not
// talk to AWS.
func skipResolve(*cobra.Command, []string) error { return nil }

// wantsJSON reports whether the --format flag asks for JSON. It reads the
// flag directly because skipResolve commands never resolve the format.
func (a *app) wantsJSON() bool {
	name, err := format.Parse(a.flags.format)
	return err == nil && name == format.JSON
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
