// Package calibration converts pixel measurements into physical lengths.
//
// A Scale is derived once from a reference object whose size is known both
// in pixels and in metres. The zero Scale is the disabled state: it is what
// ComputeScale returns for non-positive inputs, and every conversion through
// it yields "no value" rather than an error.
package calibration
