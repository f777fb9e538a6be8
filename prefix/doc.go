// Package prefix builds and rewrites the binary tree structures behind
// parallel-prefix arithmetic circuits (carry-lookahead adders, prefix
// scans such as leading-zero detection and magnitude comparison).
//
// A Tree describes the scan for a single output bit: one leaf per input
// position and one combine node per adjacent merge, with the left child
// of every combine covering strictly lower bit positions than the right.
// The set of width-w tree shapes is in bijection with [0, catalan(w-1));
// index 0 is the serial (ripple) chain and the classic topologies
// (Sklansky, Kogge-Stone, Brent-Kung) are reachable points in the same
// space.
//
// A Forest groups one tree per output bit and shares identical subtrees
// across them, which is what turns per-bit scans into the familiar
// prefix carry graphs. Sparsification trades sharing degree against
// fan-out by rebuilding non-anchor trees on top of a backbone.
package prefix
