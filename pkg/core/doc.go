// Package core provides a small, stable facade over zipcrack's internal
// search for programs that want to embed it. It re-exports a narrow API
// surface so callers do not depend on internal packages.
//
// Example:
//
//	cfg := core.DefaultConfig()
//	cfg.ArchivePath = "backup.zip"
//	res, err := core.Search(ctx, cfg)
//	if err != nil { /* handle */ }
//	_ = core.MarshalResult(os.Stdout, res)
package core
