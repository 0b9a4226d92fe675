// Package config holds the pipeline configuration: the filter rules, the
// cleanup policy and the transfer policy, their defaults, and the loader
// that reads them from YAML, TOML or JSON documents.
package config

import (
	"path/filepath"
	"strings"

	"filetamer/pkg/errors"
)

// Config is the top-level configuration document.
type Config struct {
	Filters  Filters  `koanf:"filters" yaml:"filters" toml:"filters" json:"filters"`
	Cleanup  Cleanup  `koanf:"cleanup" yaml:"cleanup" toml:"cleanup" json:"cleanup"`
	Transfer Transfer `koanf:"transfer" yaml:"transfer" toml:"transfer" json:"transfer"`
}

// Filters selects files from the source tree.
type Filters struct {
	IncludePatterns []string  `koanf:"include_patterns" yaml:"include_patterns" toml:"include_patterns" json:"include_patterns"`
	ExcludePatterns []string  `koanf:"exclude_patterns" yaml:"exclude_patterns" toml:"exclude_patterns" json:"exclude_patterns"`
	OlderThan       *Duration `koanf:"older_than" yaml:"older_than,omitempty" toml:"older_than,omitempty" json:"older_than,omitempty"`
	MinSize         *ByteSize `koanf:"min_size" yaml:"min_size,omitempty" toml:"min_size,omitempty" json:"min_size,omitempty"`
	MaxSize         *ByteSize `koanf:"max_size" yaml:"max_size,omitempty" toml:"max_size,omitempty" json:"max_size,omitempty"`
	// IgnoreFile is looked up at the source root; its lines extend ExcludePatterns.
	IgnoreFile string `koanf:"ignore_file" yaml:"ignore_file" toml:"ignore_file" json:"ignore_file"`
}

// Cleanup decides what happens to selected files before transfer.
type Cleanup struct {
	Delete             bool          `koanf:"delete" yaml:"delete" toml:"delete" json:"delete"`
	Archive            bool          `koanf:"archive" yaml:"archive" toml:"archive" json:"archive"`
	ArchiveFormat      ArchiveFormat `koanf:"archive_format" yaml:"archive_format" toml:"archive_format" json:"archive_format"`
	ArchiveDestination string        `koanf:"archive_destination" yaml:"archive_destination,omitempty" toml:"archive_destination,omitempty" json:"archive_destination,omitempty"`
	KeepOriginals      bool          `koanf:"keep_originals" yaml:"keep_originals" toml:"keep_originals" json:"keep_originals"`
	CompressionLevel   int           `koanf:"compression_level" yaml:"compression_level" toml:"compression_level" json:"compression_level"`
}

// Transfer controls how surviving files are relocated.
type Transfer struct {
	CopyInsteadOfMove          bool   `koanf:"copy_instead_of_move" yaml:"copy_instead_of_move" toml:"copy_instead_of_move" json:"copy_instead_of_move"`
	PreserveDirectoryStructure bool   `koanf:"preserve_directory_structure" yaml:"preserve_directory_structure" toml:"preserve_directory_structure" json:"preserve_directory_structure"`
	ConflictSuffix             string `koanf:"conflict_suffix" yaml:"conflict_suffix" toml:"conflict_suffix" json:"conflict_suffix"`
}

const (
	DefaultIncludePattern   = "**/*"
	DefaultIgnoreFile       = ".tamerignore"
	DefaultCompressionLevel = 6
	DefaultConflictSuffix   = "_copy"
)

// Default returns the configuration used when no document is given.
func Default() *Config {
	return &Config{
		Filters: Filters{
			IncludePatterns: []string{DefaultIncludePattern},
			ExcludePatterns: []string{},
			IgnoreFile:      DefaultIgnoreFile,
		},
		Cleanup: Cleanup{
			ArchiveFormat:    FormatZip,
			CompressionLevel: DefaultCompressionLevel,
		},
		Transfer: Transfer{
			PreserveDirectoryStructure: true,
			ConflictSuffix:             DefaultConflictSuffix,
		},
	}
}

// Normalize fills values that must never be empty and canonicalizes the
// archive format. It is applied by the loader before Validate.
func (c *Config) Normalize() error {
	if len(c.Filters.IncludePatterns) == 0 {
		c.Filters.IncludePatterns = []string{DefaultIncludePattern}
	}
	if c.Filters.ExcludePatterns == nil {
		c.Filters.ExcludePatterns = []string{}
	}
	if c.Cleanup.ArchiveFormat == "" {
		c.Cleanup.ArchiveFormat = FormatZip
	}
	format, err := ParseArchiveFormat(string(c.Cleanup.ArchiveFormat))
	if err != nil {
		return errors.Wrap(err, errors.ErrConfigInvalid, "cleanup.archive_format")
	}
	c.Cleanup.ArchiveFormat = format
	return nil
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if c.Cleanup.CompressionLevel < 0 || c.Cleanup.CompressionLevel > 9 {
		return errors.Newf(errors.ErrConfigInvalid, "cleanup.compression_level must be between 0 and 9, got %d", c.Cleanup.CompressionLevel).
			WithDetail("field", "compression_level")
	}
	if c.Transfer.ConflictSuffix == "" {
		return errors.New(errors.ErrConfigInvalid, "transfer.conflict_suffix must not be empty").
			WithDetail("field", "conflict_suffix")
	}
	if c.Filters.MinSize != nil && c.Filters.MaxSize != nil && *c.Filters.MinSize > *c.Filters.MaxSize {
		return errors.Newf(errors.ErrConfigInvalid, "filters.min_size (%s) exceeds filters.max_size (%s)", c.Filters.MinSize, c.Filters.MaxSize).
			WithDetail("field", "min_size")
	}
	if c.Filters.OlderThan != nil && c.Filters.OlderThan.Std() < 0 {
		return errors.New(errors.ErrConfigInvalid, "filters.older_than must not be negative").
			WithDetail("field", "older_than")
	}
	if strings.ContainsRune(c.Transfer.ConflictSuffix, filepath.Separator) {
		return errors.New(errors.ErrConfigInvalid, "transfer.conflict_suffix must not contain a path separator").
			WithDetail("field", "conflict_suffix")
	}
	return nil
}

// ArchivePath returns the configured archive destination, defaulting to
// archive.<ext> in the working directory.
func (c *Cleanup) ArchivePath() string {
	if c.ArchiveDestination != "" {
		return c.ArchiveDestination
	}
	return "archive." + c.ArchiveFormat.Extension()
}

// Active reports which cleanup branch runs: "archive", "delete" or "none".
func (c *Cleanup) Active() string {
	switch {
	case c.Archive:
		return "archive"
	case c.Delete:
		return "delete"
	default:
		return "none"
	}
}
