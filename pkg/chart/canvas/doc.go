// Package canvas is the raster compositor that chart sessions draw on.
//
// A [Surface] is the capability every drawing stage uses: stroke a line,
// stroke a polyline, stroke an ellipse outline and draw text. Two surfaces
// are provided:
//
//   - [Recorder] keeps the ordered list of operations only. Tests use it to
//     inspect geometry without rasterizing.
//   - [Canvas] records the same list and rasterizes every operation onto an
//     RGB image through fogleman/gg as it arrives.
//
// Operations are appended in call order and never removed or reordered, so
// the op list of a canvas is a faithful transcript of its layer order.
//
// # Export
//
// [Canvas.SavePNG] writes a lossless PNG to a temporary file next to the
// destination and renames it into place, so a failed export never leaves a
// truncated image readable at the destination path.
package canvas
