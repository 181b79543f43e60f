package dictionary

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileFormat represents different dictionary file formats
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatText               // "word score" lines
	FormatBinary             // MessagePack encoded entries
)

// FormatInfo contains metadata about a dictionary file format
type FormatInfo struct {
	Format      FileFormat
	Description string
	Extension   string
	MinSize     int64 // Minimum expected file size in bytes
}

var supportedFormats = map[FileFormat]FormatInfo{
	FormatText: {
		Format:      FormatText,
		Description: "Plain Text Dictionary",
		Extension:   ".txt",
		MinSize:     1,
	},
	FormatBinary: {
		Format:      FormatBinary,
		Description: "MessagePack Dictionary",
		Extension:   ".bin",
		MinSize:     1, // an empty msgpack array is a single byte
	},
}

func (f FileFormat) String() string {
	if info, ok := supportedFormats[f]; ok {
		return info.Description
	}
	return "Unknown"
}

// DetectFormat infers the format from the file extension.
func DetectFormat(filename string) FileFormat {
	ext := strings.ToLower(filepath.Ext(filename))
	for format, info := range supportedFormats {
		if ext == info.Extension {
			return format
		}
	}
	return FormatUnknown
}

// TypeName returns the candidate type a dictionary file holds: "mention.txt" -> "mention".
func TypeName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ValidateFileFormat checks if a file matches the expected format
func ValidateFileFormat(filename string, expectedFormat FileFormat) error {
	fileInfo, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", filename, err)
	}

	formatInfo, exists := supportedFormats[expectedFormat]
	if !exists {
		return fmt.Errorf("unknown format: %v", expectedFormat)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("%s is a directory", filename)
	}
	if fileInfo.Size() < formatInfo.MinSize {
		return fmt.Errorf("file %s is too small (%d bytes) for format %s (minimum: %d bytes)",
			filename, fileInfo.Size(), formatInfo.Description, formatInfo.MinSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext != formatInfo.Extension {
		return fmt.Errorf("file %s has invalid extension %s for format %s (expected: %s)",
			filename, ext, formatInfo.Description, formatInfo.Extension)
	}
	return nil
}
