// Package types provides the data structures shared between frames.
//
// These types travel through the cross-frame channel as JSON, so their field
// names follow the wire format rather than Go conventions where the two differ.
//
// Geometry:
//   - Offset: translation between nested frames, encoded as [x, y]
//   - Rect, Size: popup frame geometry with a validity flag
//   - ElementRect: bounding box of the element a popup is shown for
//
// Popup configuration:
//   - OptionsContext: options profile selector
//   - ShowDetails, DisplayDetails: arguments of showContent
//   - PopupInfo: identity of a hosted popup
package types
