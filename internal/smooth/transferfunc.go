// Package smooth implements sampled k-space transfer functions used to
// apodize the ramp kernel: Gaussian and tapered-cosine window.
package smooth

import "github.com/athabascarecon/ctrecon/internal/geom"

// TransferFunction generates a sampled, wrap-symmetric k-space
// weighting array of a given length.
type TransferFunction interface {
	// Construct returns an array of length samples, W[0]=1, with
	// W[L-k] == W[k] for k<=L/2.
	Construct(length int) *geom.Array[float64]
}
