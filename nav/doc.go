// Package nav implements grid path-finding for crowd agents.
//
// A Grid owns every Cell. A Search runs A* over the grid one expansion per
// Step, blending two cost fields into each cell's movement penalty. A
// Dispatcher serializes path requests so that exactly one Search mutates the
// grid at a time; hosts either tick it with a step budget every frame or let
// it run searches to completion.
package nav
