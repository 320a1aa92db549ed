// Package vision locates the ball in a single frame.
//
// Two strategies sit behind the Localizer interface:
//
//   - segmentation: colour threshold plus contour shape filters, evaluated
//     independently on every frame.
//   - correlation: a stateful appearance tracker seeded with a region in
//     the first frame.
//
// Contour geometry (area, moments, hull) and candidate selection are plain
// Go so they can be tested without decoding images.
package vision
