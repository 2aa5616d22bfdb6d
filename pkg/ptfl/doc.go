// Package ptfl decodes the ptfl scan-list text format.
//
// A ptfl file is a sequence of blocks separated by optional blank lines.
// Each block starts with a line holding a positive integer N followed by
// exactly N lines of "angle,range" pairs:
//
//	2
//	0.0, 1.0
//	1.5708, 2.0
//
// Every completed block becomes one scan.Entry keyed by the file's base name
// and the block's zero-based index within that file.
//
// The Parser is an explicit state machine whose state survives between
// calls to Parse, which lets a block span sequential reads. Callers must call
// Renew after a failed Parse before reusing the parser.
package ptfl
