// Package kinematics turns an ordered, possibly gappy position series into
// velocity and acceleration estimates using first-order backward finite
// differences.
//
// Missing measurements are carried explicitly as undefined Values and are
// never interpolated. A gap makes the velocity of the following sample
// undefined, and the acceleration one sample later. Samples whose time
// step is zero or negative produce undefined derivatives rather than
// infinities.
//
// Key types: Value, PositionSample, KinematicSample, Differentiator.
package kinematics
