// Package frame models the visual sources a receipt can be captured from: a
// decoded still image or the current frame of a live video stream. Both cases
// expose their native pixel size through Dimensions so callers never depend on
// a display or render size.
package frame
