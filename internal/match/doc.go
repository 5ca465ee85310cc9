// Package match scores and filters artwork candidates against a query title.
//
// Three named policies live here and are deliberately not unified:
//
//   - Score applies graduated bonuses and penalties and serves live provider
//     search, where a weak match is still worth ranking.
//   - FilterTitles applies a hard critical-keyword gate and serves local
//     dataset lookups, where a collection/sequel/edition keyword mismatch
//     means a categorically different product.
//   - ScoreFilename ranks thumbnail-index filenames by token overlap.
//
// All three are pure functions of their inputs with no I/O.
package match
