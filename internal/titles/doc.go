// Package titles turns loosely formatted ROM and game names into clean,
// search-ready titles. A Title carries the cleaned name, an ASCII-folded
// normalized form, ordered search variants, and extracted sequel number,
// subtitle, and release year. Derivation is best-effort and never fails.
package titles
