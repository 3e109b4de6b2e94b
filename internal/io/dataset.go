package io

import (
	"fmt"
	stdio "io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/idlab-discover/agropredict-cli/internal/dataset"
)

// Compression selects the codec wrapped around a CSV export.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	default:
		return "none"
	}
}

// Extension returns the file suffix appended after ".csv".
func (c Compression) Extension() string {
	switch c {
	case CompressionGzip:
		return ".gz"
	case CompressionZstd:
		return ".zst"
	default:
		return ""
	}
}

// CompressionFor infers the codec from a file name.
func CompressionFor(path string) Compression {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		return CompressionGzip
	case strings.HasSuffix(lower, ".zst"), strings.HasSuffix(lower, ".zstd"):
		return CompressionZstd
	default:
		return CompressionNone
	}
}

// ParseCompression accepts "none", "gzip"/"gz", "zstd"/"zst". "auto" and ""
// defer to the output path.
func ParseCompression(s, path string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return CompressionFor(path), nil
	case "none":
		return CompressionNone, nil
	case "gzip", "gz":
		return CompressionGzip, nil
	case "zstd", "zst":
		return CompressionZstd, nil
	}
	return CompressionNone, fmt.Errorf("unsupported compression: %q", s)
}

// WriteDataset writes ds as CSV through the chosen codec.
func WriteDataset(w stdio.Writer, ds *dataset.Dataset, c Compression) error {
	switch c {
	case CompressionGzip:
		zw := gzip.NewWriter(w)
		if err := ds.WriteCSV(zw); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	case CompressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return err
		}
		if err := ds.WriteCSV(zw); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	default:
		return ds.WriteCSV(w)
	}
}

// ReadDataset parses a CSV export written by WriteDataset.
func ReadDataset(r stdio.Reader, c Compression) (*dataset.Dataset, error) {
	switch c {
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		return dataset.ReadCSV(zr)
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer zr.Close()
		return dataset.ReadCSV(zr)
	default:
		return dataset.ReadCSV(r)
	}
}

// ExportDataset writes ds to path, creating or truncating it.
func ExportDataset(ds *dataset.Dataset, path string, c Compression) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteDataset(f, ds, c); err != nil {
		f.Close()
		return fmt.Errorf("export %s: %w", path, err)
	}
	return f.Close()
}

// ImportDataset reads a dataset file, inferring the codec from its name.
func ImportDataset(path string) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ds, err := ReadDataset(f, CompressionFor(path))
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return ds, nil
}
