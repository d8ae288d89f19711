package zipcrack

import (
	"strings"

	"github.com/spf13/cobra"
)

// The pick helpers resolve a setting as CLI flag (when explicitly set) >
// local config > global config > flag default.

func pickString(changed bool, cli string, local, global *string) string {
	if changed {
		return cli
	}
	if local != nil && *local != "" {
		return *local
	}
	if global != nil && *global != "" {
		return *global
	}
	return cli
}

func pickInt(changed bool, cli int, local, global *int) int {
	if changed {
		return cli
	}
	if local != nil && *local != 0 {
		return *local
	}
	if global != nil && *global != 0 {
		return *global
	}
	return cli
}

func pickBool(changed bool, cli bool, local, global *bool) bool {
	if changed {
		return cli
	}
	if local != nil {
		return *local
	}
	if global != nil {
		return *global
	}
	return cli
}

func changed(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
