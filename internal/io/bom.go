// Package io reads and writes the files produced by agropredict: CycloneDX
// model-card BOMs, (optionally compressed) dataset exports and training
// reports.
package io

import (
	"fmt"
	stdio "io"
	"os"
	"path/filepath"
	"strings"

	cdx "github.com/CycloneDX/cyclonedx-go"
)

// bomFormat resolves "json", "xml", "auto" or "" against a file path.
// Anything that is not .xml is treated as JSON in auto mode.
func bomFormat(path, format string) (cdx.BOMFileFormat, string, error) {
	actual := strings.ToLower(strings.TrimSpace(format))
	switch actual {
	case "", "auto":
		if strings.EqualFold(filepath.Ext(path), ".xml") {
			actual = "xml"
		} else {
			actual = "json"
		}
	case "json", "xml":
	default:
		return cdx.BOMFileFormatJSON, "", fmt.Errorf("unsupported BOM format: %q", format)
	}
	if actual == "xml" {
		return cdx.BOMFileFormatXML, actual, nil
	}
	return cdx.BOMFileFormatJSON, actual, nil
}

// ReadBOM reads a BOM from a file (JSON or XML).
func ReadBOM(path string, format string) (*cdx.BOM, error) {
	fileFmt, _, err := bomFormat(path, format)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bom := new(cdx.BOM)
	if err := cdx.NewBOMDecoder(f, fileFmt).Decode(bom); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return bom, nil
}

// EncodeBOM writes a pretty-printed BOM to w. An empty spec encodes with
// the library's latest version.
func EncodeBOM(w stdio.Writer, bom *cdx.BOM, format string, spec string) error {
	fileFmt, _, err := bomFormat("", format)
	if err != nil {
		return err
	}
	encoder := cdx.NewBOMEncoder(w, fileFmt)
	encoder.SetPretty(true)

	if spec == "" {
		return encoder.Encode(bom)
	}
	sv, ok := ParseSpecVersion(spec)
	if !ok {
		return fmt.Errorf("unsupported CycloneDX spec version: %q", spec)
	}
	return encoder.EncodeVersion(bom, sv)
}

// WriteBOM writes a BOM to outputPath, creating its directory. In auto mode
// the format follows the extension; an explicit format must agree with it.
func WriteBOM(bom *cdx.BOM, outputPath string, format string, spec string) error {
	_, actual, err := bomFormat(outputPath, format)
	if err != nil {
		return err
	}
	if ext := filepath.Ext(outputPath); ext != "."+actual {
		return fmt.Errorf("output path extension %q does not match format %q", ext, actual)
	}
	if spec != "" {
		if _, ok := ParseSpecVersion(spec); !ok {
			return fmt.Errorf("unsupported CycloneDX spec version: %q", spec)
		}
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	if err := EncodeBOM(f, bom, actual, spec); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SupportedSpecVersions lists the CycloneDX versions the BOM can be
// encoded as. Model cards only exist from 1.5 on; older versions drop them.
var SupportedSpecVersions = []cdx.SpecVersion{
	cdx.SpecVersion1_0, cdx.SpecVersion1_1, cdx.SpecVersion1_2, cdx.SpecVersion1_3,
	cdx.SpecVersion1_4, cdx.SpecVersion1_5, cdx.SpecVersion1_6,
}

// ParseSpecVersion maps "1.0" … "1.6" to a CycloneDX SpecVersion.
func ParseSpecVersion(s string) (cdx.SpecVersion, bool) {
	s = strings.TrimSpace(s)
	for _, v := range SupportedSpecVersions {
		if v.String() == s {
			return v, true
		}
	}
	return 0, false
}
