// Package diagnostic provides structured errors and warnings for the
// class migrator.
//
// Key capabilities:
//   - Mapping table validation reports (every problem, not just the first)
//   - Per-resource warnings raised while rewriting class files
//   - Safe accumulation from concurrent transforms (see Collector)
package diagnostic
