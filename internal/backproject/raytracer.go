// Package backproject implements the parallel back-projector and its
// ray tracer: for every voxel in a worker's owned sub-volume, it
// intersects the voxel with the rotated projection plane and
// accumulates an interpolated sample.
package backproject

import "math"

// RayTracer computes the intersection point (u,v) of the ray through
// a voxel at world coordinates (zw,yw,xw) with the projection plane
// rotated to angle theta (radians). u is parallel to the rotation
// axis, v is perpendicular to it within the rotated plane.
type RayTracer interface {
	Intersect(zw, yw, xw, theta float64) (u, v float64)
}

// Standard is the ordinary parallel-beam ray tracer: u=zw,
// v=-sin(theta)*xw+cos(theta)*yw.
type Standard struct{}

// Intersect implements RayTracer.
func (Standard) Intersect(zw, yw, xw, theta float64) (u, v float64) {
	return zw, -math.Sin(theta)*xw + math.Cos(theta)*yw
}

// ReverseRotation is Standard with the sign of theta flipped, for
// acquisition geometries where the gantry (or sample) rotates in the
// opposite sense.
type ReverseRotation struct{}

// Intersect implements RayTracer.
func (ReverseRotation) Intersect(zw, yw, xw, theta float64) (u, v float64) {
	return Standard{}.Intersect(zw, yw, xw, -theta)
}
