// Package rgb565 decodes raw RGB565 frames into 8-bit-per-channel images.
//
// Each pixel on the wire is a little-endian uint16 with 5 bits of red, 6 of
// green and 5 of blue (MSB first). Channels are rescaled with integer floor
// division:
//
//	r8 = r5 * 255 / 31
//	g8 = g6 * 255 / 63
//	b8 = b5 * 255 / 31
//
// so 0x0000 decodes to (0, 0, 0), 0xFFFF to (255, 255, 255), and the
// mid-scale codes (16, 32, 16) to (131, 129, 131). Other tools round to
// nearest or use bit replication; those differ by up to one step per channel.
//
// The mapping runs through precomputed 32- and 64-entry tables, so a QVGA
// frame decodes in well under a millisecond on a desktop CPU.
package rgb565
