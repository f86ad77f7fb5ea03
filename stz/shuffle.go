package stz

import "fmt"

// shuffleBF16 splits BF16 element bytes into planes, high bytes in the
// first half of dst and low bytes in the second. Grouping the high bytes,
// which carry sign and exponent and vary little across a tensor, is what
// makes the chunks compressible.
func shuffleBF16(src, dst []byte) error {
	if len(src)%2 != 0 {
		return fmt.Errorf("chunk size %d must be even for bf16 shuffle", len(src))
	}

	half := len(src) / 2
	for i := 0; i < half; i++ {
		dst[i] = src[2*i+1]
		dst[half+i] = src[2*i]
	}
	return nil
}

// unshuffleBF16 reverses shuffleBF16.
func unshuffleBF16(src, dst []byte) error {
	if len(src)%2 != 0 {
		return fmt.Errorf("chunk size %d must be even for bf16 unshuffle", len(src))
	}

	half := len(src) / 2
	for i := 0; i < half; i++ {
		dst[2*i+1] = src[i]
		dst[2*i] = src[half+i]
	}
	return nil
}
