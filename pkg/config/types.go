package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Duration is a time.Duration that reads and writes as text. Besides Go
// duration syntax it accepts a whole-day suffix ("7d").
type Duration time.Duration

// ParseDuration parses "90m", "36h", "7d" or "1d12h".
func ParseDuration(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	var days int64
	if i := strings.IndexByte(s, 'd'); i > 0 {
		n, err := strconv.ParseInt(s[:i], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid day count in %q: %w", s, err)
		}
		days = n
		s = s[i+1:]
	}
	var rest time.Duration
	if s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return 0, err
		}
		rest = d
	}
	return Duration(time.Duration(days)*24*time.Hour + rest), nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string {
	std := time.Duration(d)
	if std > 0 && std%(24*time.Hour) == 0 {
		return fmt.Sprintf("%dd", std/(24*time.Hour))
	}
	return std.String()
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ByteSize is a byte count that also accepts human sizes ("5KB", "1.5MiB").
type ByteSize uint64

func (b ByteSize) String() string {
	return humanize.Bytes(uint64(b))
}

// MarshalText writes the exact byte count so round trips are lossless.
func (b ByteSize) MarshalText() ([]byte, error) {
	return []byte(strconv.FormatUint(uint64(b), 10)), nil
}

func (b *ByteSize) UnmarshalText(text []byte) error {
	n, err := humanize.ParseBytes(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*b = ByteSize(n)
	return nil
}

// ArchiveFormat names one of the supported container formats.
type ArchiveFormat string

const (
	FormatZip     ArchiveFormat = "zip"
	FormatTar     ArchiveFormat = "tar"
	FormatTarGzip ArchiveFormat = "tar+gzip"
)

// ParseArchiveFormat normalizes a format name, accepting the common
// spellings of tar+gzip.
func ParseArchiveFormat(s string) (ArchiveFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "zip":
		return FormatZip, nil
	case "tar":
		return FormatTar, nil
	case "tar+gzip", "targz", "tar.gz", "tgz":
		return FormatTarGzip, nil
	}
	return "", fmt.Errorf("unsupported archive format %q", s)
}

// Extension returns the file extension used for default archive names.
func (f ArchiveFormat) Extension() string {
	switch f {
	case FormatTar:
		return "tar"
	case FormatTarGzip:
		return "tar.gz"
	default:
		return "zip"
	}
}
