// Package transform drives the migration of named resources.
//
// A Session holds everything one run shares: the mapping tables in the
// configured direction, the helper registry and the warnings raised so far.
// Session.Transform handles one resource; Session.TransformAll runs a batch
// on a bounded worker pool. A transform returns no resources when the input
// is unchanged, one replacement resource, or a replacement followed by a
// newly synthesized helper class.
package transform
