// Package stz reads and writes the stz container, a recompressed form of a
// safetensors file.
//
// The container keeps the safetensors header as-is so it stays inspectable
// without decompression: an 8-byte little-endian header length followed by
// the raw header bytes. The payload is split into fixed-size chunks, each
// byte-shuffled for BF16 data and compressed with zstd, framed as
// [rawSize uint64][compSize uint64][compressed bytes].
package stz

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/errgroup"

	"github.com/tensorstat/tensorstat/safetensors"
)

const (
	// ChunkSize is the raw payload bytes per compressed chunk.
	ChunkSize = 32 << 20

	// batchSize chunks are read ahead and compressed concurrently.
	batchSize = 8

	// DefaultLevel is the default zstd compression level.
	DefaultLevel = 3

	// maxChunkSize bounds the sizes a chunk header may declare. The values
	// come off the wire and are not trusted before any allocation.
	maxChunkSize = 1 << 30
)

// Options control Compress and Decompress.
type Options struct {
	// Level is the zstd compression level (1-22). Zero means DefaultLevel.
	Level int

	// Workers bounds concurrent chunk compression. Zero means GOMAXPROCS.
	Workers int

	// ChunkSize overrides the raw bytes per chunk. Zero means ChunkSize.
	// The framing records each chunk's size, so readers do not depend on
	// the value a writer used.
	ChunkSize int

	// Progress, when set, is called with the total input bytes consumed
	// after the header and after each chunk.
	Progress func(processed int64)
}

// Stats reports the outcome of a Compress or Decompress run.
type Stats struct {
	BytesIn  int64
	BytesOut int64
	Elapsed  time.Duration
}

// Ratio returns the input to output size ratio.
func (s Stats) Ratio() float64 {
	if s.BytesOut == 0 {
		return 0
	}
	return float64(s.BytesIn) / float64(s.BytesOut)
}

type chunk struct {
	raw  []byte
	comp []byte
}

// Compress rewrites the safetensors stream from in as an stz container on
// out. Chunks within a batch are compressed concurrently; writes stay in
// input order.
func Compress(ctx context.Context, in io.Reader, out io.Writer, opts Options) (Stats, error) {
	level := zstd.SpeedDefault
	if opts.Level > 0 {
		level = zstd.EncoderLevelFromZstd(opts.Level)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 || chunkSize > maxChunkSize {
		chunkSize = ChunkSize
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return Stats{}, err
	}
	defer enc.Close()

	started := time.Now()

	headerLen, err := copyHeader(in, out)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{BytesIn: headerLen, BytesOut: headerLen}
	report(opts, stats.BytesIn)

	batch := make([]chunk, batchSize)
	for i := range batch {
		batch[i].raw = make([]byte, chunkSize)
	}

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		n := 0
		for n < batchSize {
			read, err := io.ReadFull(in, batch[n].raw[:chunkSize])
			if read > 0 {
				batch[n].raw = batch[n].raw[:read]
				n++
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			} else if err != nil {
				return stats, err
			}
		}
		if n == 0 {
			break
		}

		var g errgroup.Group
		g.SetLimit(workers)
		for i := 0; i < n; i++ {
			c := &batch[i]
			g.Go(func() error {
				shuffled := make([]byte, len(c.raw))
				if err := shuffleBF16(c.raw, shuffled); err != nil {
					return err
				}
				c.comp = enc.EncodeAll(shuffled, c.comp[:0])
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return stats, err
		}

		for i := 0; i < n; i++ {
			c := &batch[i]
			if err := writeChunk(out, c); err != nil {
				return stats, err
			}
			stats.BytesIn += int64(len(c.raw))
			stats.BytesOut += 16 + int64(len(c.comp))
			report(opts, stats.BytesIn)

			batch[i].raw = batch[i].raw[:chunkSize]
		}

		if n < batchSize {
			break
		}
	}

	stats.Elapsed = time.Since(started)
	return stats, nil
}

// Decompress rewrites the stz container from in as a plain safetensors
// stream on out. Chunks are processed serially.
func Decompress(ctx context.Context, in io.Reader, out io.Writer, opts Options) (Stats, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return Stats{}, err
	}
	defer dec.Close()

	started := time.Now()

	headerLen, err := copyHeader(in, out)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{BytesIn: headerLen, BytesOut: headerLen}
	report(opts, stats.BytesIn)

	var comp, shuffled []byte
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		var rawSize, compSize uint64
		if err := binary.Read(in, binary.LittleEndian, &rawSize); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return stats, err
		}
		if err := binary.Read(in, binary.LittleEndian, &compSize); err != nil {
			return stats, fmt.Errorf("corrupted chunk header: %w", err)
		}
		if rawSize > maxChunkSize || compSize > maxChunkSize {
			return stats, fmt.Errorf("corrupted chunk header: declared %d raw, %d compressed bytes", rawSize, compSize)
		}

		if uint64(cap(comp)) < compSize {
			comp = make([]byte, compSize)
		}
		comp = comp[:compSize]
		if _, err := io.ReadFull(in, comp); err != nil {
			return stats, fmt.Errorf("corrupted chunk: %w", err)
		}

		shuffled, err = dec.DecodeAll(comp, shuffled[:0])
		if err != nil {
			return stats, err
		}
		if uint64(len(shuffled)) != rawSize {
			return stats, fmt.Errorf("corrupted chunk: declared %d raw bytes, got %d", rawSize, len(shuffled))
		}

		final := make([]byte, len(shuffled))
		if err := unshuffleBF16(shuffled, final); err != nil {
			return stats, err
		}
		if _, err := out.Write(final); err != nil {
			return stats, err
		}

		stats.BytesIn += 16 + int64(compSize)
		stats.BytesOut += int64(rawSize)
		report(opts, stats.BytesIn)
	}

	stats.Elapsed = time.Since(started)
	return stats, nil
}

// copyHeader passes the length prefix and header bytes through unchanged
// and returns the number of bytes moved.
func copyHeader(in io.Reader, out io.Writer) (int64, error) {
	n, err := safetensors.ReadHeaderSize(in)
	if err != nil {
		return 0, err
	}

	if err := binary.Write(out, binary.LittleEndian, n); err != nil {
		return 0, err
	}

	copied, err := io.CopyN(out, in, int64(n))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("header truncated: declared %d bytes, got %d", n, copied)
		}
		return 0, err
	}

	return 8 + int64(n), nil
}

func writeChunk(out io.Writer, c *chunk) error {
	if err := binary.Write(out, binary.LittleEndian, uint64(len(c.raw))); err != nil {
		return err
	}
	if err := binary.Write(out, binary.LittleEndian, uint64(len(c.comp))); err != nil {
		return err
	}
	_, err := out.Write(c.comp)
	return err
}

func report(opts Options, processed int64) {
	if opts.Progress != nil {
		opts.Progress(processed)
	}
}
