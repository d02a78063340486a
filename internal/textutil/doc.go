// Package textutil provides text normalization, truncation, and similarity
// primitives used by duplicate detection.
package textutil
