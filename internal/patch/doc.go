// Package patch describes edits to a class file and applies them.
//
// A Descriptor collects every substitution inside one constant-pool UTF-8
// entry or one method's code. Edits name a replacement pair of a Source by
// index, so descriptors stay small and can be replayed without rescanning.
// Apply merges the original bytes with a Set of descriptors and an optional
// constant-pool tail in a single forward pass, updating every length field
// the substitutions invalidate.
package patch
