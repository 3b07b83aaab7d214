// Package helper synthesizes the helper class that redirected call sites
// forward to.
//
// The helper carries the mapping table at runtime: its static initializer
// fills a map with every (from, to) pair, and each forwarding method passes
// the mapped name on to the JDK entry point it replaces. The class is
// produced by patching an embedded template with the same machinery used for
// application classes.
package helper
