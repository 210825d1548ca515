// Package starmap renders a user's artist universe as an explorable star
// field: seed artists shine as anchors, recommendations cluster around them
// under a force-directed layout, and zooming dissolves between an aggregate
// nebula view and full per-node detail.
//
// The package is a library, not an application. The host supplies artist
// and cluster data, receives hover/selection callbacks, and drives frames
// either through ebiten or a deterministic test harness. See cmd/starmap
// for a complete wiring example.
package starmap
