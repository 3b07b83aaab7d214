// Package scan finds mapping occurrences inside the UTF-8 constants of a
// class file.
package scan
