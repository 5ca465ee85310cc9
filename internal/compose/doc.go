// Package compose implements the image pipeline that turns downloaded
// artwork into finished icons: cover-fit cropping with content-aware
// centering, border masking with feathered corners, gradient and blend-mode
// math, and logo-region detection. All functions operate on in-memory
// buffers; callers own decode, encode, and file placement.
package compose
