// Copyright 2026 The Viable Authors
// SPDX-License-Identifier: Apache-2.0

package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz/lzma"
)

// Codec identifies the compression applied to the definition payload.
// The zero value is CodecLZMA, the only codec Viable clients decode.
type Codec uint8

const (
	// CodecLZMA is LZMA in the "alone" container (.lzma): a 13-byte
	// header carrying the properties byte, dictionary size, and an
	// unknown uncompressed size, followed by a stream terminated by an
	// end-of-stream marker.
	CodecLZMA Codec = iota

	// CodecZstd is a zstd frame at the best-compression level.
	CodecZstd

	// CodecLZ4 is an LZ4 frame. Decodes fastest on small MCUs with
	// custom clients.
	CodecLZ4

	// CodecNone embeds the payload uncompressed.
	CodecNone
)

// LZMA parameters matching the encoder used by Viable's reference
// tooling (xz preset 9).
const (
	lzmaLiteralContextBits  = 3
	lzmaLiteralPositionBits = 0
	lzmaPositionBits        = 2
	lzmaDictionaryCapacity  = 64 << 20
)

// String returns the codec name.
func (codec Codec) String() string {
	switch codec {
	case CodecLZMA:
		return "lzma"
	case CodecZstd:
		return "zstd"
	case CodecLZ4:
		return "lz4"
	case CodecNone:
		return "none"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(codec))
	}
}

// ParseCodec parses a codec name. The empty string is CodecLZMA.
func ParseCodec(name string) (Codec, error) {
	switch name {
	case "", "lzma":
		return CodecLZMA, nil
	case "zstd":
		return CodecZstd, nil
	case "lz4":
		return CodecLZ4, nil
	case "none":
		return CodecNone, nil
	default:
		return 0, fmt.Errorf("unknown codec %q (want lzma, zstd, lz4, or none)", name)
	}
}

// Compress compresses data with codec. For CodecNone, returns the input
// unchanged (no copy).
func Compress(data []byte, codec Codec) ([]byte, error) {
	switch codec {
	case CodecLZMA:
		return compressLZMA(data)
	case CodecZstd:
		return zstdEncoder.EncodeAll(data, nil), nil
	case CodecLZ4:
		return compressLZ4(data)
	case CodecNone:
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported codec %s", codec)
	}
}

// Decompress reverses Compress. uncompressedSize must match the
// original length exactly; a mismatch is an error.
func Decompress(compressed []byte, codec Codec, uncompressedSize int) ([]byte, error) {
	var (
		result []byte
		err    error
	)
	switch codec {
	case CodecLZMA:
		result, err = decompressLZMA(compressed)
	case CodecZstd:
		result, err = zstdDecoder.DecodeAll(compressed, make([]byte, 0, uncompressedSize))
		if err != nil {
			err = fmt.Errorf("zstd decompress: %w", err)
		}
	case CodecLZ4:
		result, err = decompressLZ4(compressed)
	case CodecNone:
		result = compressed
	default:
		return nil, fmt.Errorf("unsupported codec %s", codec)
	}
	if err != nil {
		return nil, err
	}
	if len(result) != uncompressedSize {
		return nil, fmt.Errorf("%s decompress: got %d bytes, expected %d", codec, len(result), uncompressedSize)
	}
	return result, nil
}

func compressLZMA(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer, err := lzma.WriterConfig{
		Properties: &lzma.Properties{
			LC: lzmaLiteralContextBits,
			LP: lzmaLiteralPositionBits,
			PB: lzmaPositionBits,
		},
		DictCap:      lzmaDictionaryCapacity,
		Matcher:      lzma.BinaryTree,
		SizeInHeader: false,
		EOSMarker:    true,
	}.NewWriter(&buffer)
	if err != nil {
		return nil, fmt.Errorf("lzma compress: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("lzma compress: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("lzma compress: %w", err)
	}
	return buffer.Bytes(), nil
}

func decompressLZMA(compressed []byte) ([]byte, error) {
	reader, err := lzma.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("lzma decompress: %w", err)
	}
	result, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("lzma decompress: %w", err)
	}
	return result, nil
}

func compressLZ4(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer := lz4.NewWriter(&buffer)
	if err := writer.Apply(lz4.CompressionLevelOption(lz4.Level9)); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	return buffer.Bytes(), nil
}

func decompressLZ4(compressed []byte) ([]byte, error) {
	result, err := io.ReadAll(lz4.NewReader(bytes.NewReader(compressed)))
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	return result, nil
}

// zstdEncoder and zstdDecoder are shared; both are safe for concurrent
// use with EncodeAll and DecodeAll.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedBestCompression),
	)
	if err != nil {
		panic("compress: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("compress: zstd decoder initialization failed: " + err.Error())
	}
}

// Ratio returns compressed size as a whole percentage of the
// uncompressed size, rounded down, or 0 for an empty input.
func Ratio(uncompressed, compressed int) int {
	if uncompressed == 0 {
		return 0
	}
	return 100 * compressed / uncompressed
}
