// Package frameoffset resolves the position of a nested frame relative to the
// root frame.
//
// The host keeps a Tree of frame placements, optionally seeded from a YAML
// layout file, and answers FrameOffsetForwarder.getOffset calls from it.
// Frames ask through a Forwarder, which is the Source a popup proxy uses to
// translate coordinates into the root frame.
package frameoffset
