package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"filetamer/pkg/errors"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// EnvPrefix prefixes environment overrides. Sections and keys are joined by
// a double underscore: FILETAMER_CLEANUP__ARCHIVE_FORMAT=tar.
const EnvPrefix = "FILETAMER_"

// AppName is the directory name used under the XDG base directories.
const AppName = "filetamer"

// searchNames are tried, in order, under $XDG_CONFIG_HOME/filetamer when no
// explicit config path is given.
var searchNames = []string{"config.yaml", "config.yml", "config.toml", "config.json"}

// aliases maps the older key names still found in existing documents to
// their current spelling, per section.
var aliases = map[string]map[string]string{
	"cleanup": {
		"archive_output": "archive_destination",
		"keep_original":  "keep_originals",
	},
	"transfer": {
		"copy":               "copy_instead_of_move",
		"preserve_structure": "preserve_directory_structure",
	},
}

func defaultsMap() map[string]interface{} {
	return map[string]interface{}{
		"filters.include_patterns":              []interface{}{DefaultIncludePattern},
		"filters.exclude_patterns":              []interface{}{},
		"filters.ignore_file":                   DefaultIgnoreFile,
		"cleanup.delete":                        false,
		"cleanup.archive":                       false,
		"cleanup.archive_format":                string(FormatZip),
		"cleanup.keep_originals":                false,
		"cleanup.compression_level":             DefaultCompressionLevel,
		"transfer.copy_instead_of_move":         false,
		"transfer.preserve_directory_structure": true,
		"transfer.conflict_suffix":              DefaultConflictSuffix,
	}
}

// Load builds the configuration from defaults, the document at path and
// the environment. An empty path falls back to the XDG config search; when
// nothing is found the defaults (plus environment) are used.
func Load(path string, logger *zap.Logger) (*Config, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if path == "" {
		path = searchConfigFile()
		if path != "" {
			logger.Debug("Using config from XDG config home", zap.String("path", path))
		}
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaultsMap(), "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	if path != "" {
		doc, err := readDocument(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(confmap.Provider(doc, ""), nil); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to merge config %s", path)
		}
		logger.Debug("Loaded config file", zap.String("path", path))
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	if err := checkRawValues(k); err != nil {
		return nil, err
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.TextUnmarshallerHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode configuration")
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Cleanup.Archive && cfg.Cleanup.Delete {
		logger.Warn("Both cleanup.archive and cleanup.delete are set; archiving takes precedence")
	}
	return &cfg, nil
}

// readDocument reads and parses one config file, choosing the parser from
// the file extension.
func readDocument(path string) (map[string]interface{}, error) {
	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}

	data, err := file.Provider(path).ReadBytes()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to read config file %s", path)
	}

	doc, err := parser.Unmarshal(data)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config file %s", path)
	}
	applyAliases(doc)
	return doc, nil
}

func parserFor(path string) (koanf.Parser, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "yaml", "yml":
		return yaml.Parser(), nil
	case "toml":
		return toml.Parser(), nil
	case "json":
		return json.Parser(), nil
	}
	return nil, errors.Newf(errors.ErrConfigUnsupported, "unsupported config file extension %q", ext).
		WithDetail("path", path)
}

// applyAliases rewrites legacy keys in place. The current spelling wins
// when both are present.
func applyAliases(doc map[string]interface{}) {
	for section, names := range aliases {
		sec, ok := doc[section].(map[string]interface{})
		if !ok {
			continue
		}
		for old, current := range names {
			v, ok := sec[old]
			if !ok {
				continue
			}
			delete(sec, old)
			if _, exists := sec[current]; !exists {
				sec[current] = v
			}
		}
	}

	filters, ok := doc["filters"].(map[string]interface{})
	if !ok {
		return
	}
	if days, ok := filters["older_than_days"]; ok {
		delete(filters, "older_than_days")
		if _, exists := filters["older_than"]; !exists {
			filters["older_than"] = fmt.Sprintf("%vd", days)
		}
	}
}

// checkRawValues rejects numbers the weakly typed decoder would otherwise
// accept silently: a bare number for older_than (read as nanoseconds) and a
// negative size (wrapped around to a huge unsigned value).
func checkRawValues(k *koanf.Koanf) error {
	if v := k.Get("filters.older_than"); v != nil && isNumber(v) {
		return errors.Newf(errors.ErrConfigInvalid, "filters.older_than needs a unit, e.g. \"%vd\" or \"%vh\"", v, v).
			WithDetail("field", "older_than")
	}
	for _, key := range []string{"min_size", "max_size"} {
		v := k.Get("filters." + key)
		if v == nil || !isNumber(v) {
			continue
		}
		if reflect.ValueOf(v).Convert(reflect.TypeOf(float64(0))).Float() < 0 {
			return errors.Newf(errors.ErrConfigInvalid, "filters.%s must not be negative, got %v", key, v).
				WithDetail("field", key)
		}
	}
	return nil
}

func isNumber(v interface{}) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func searchConfigFile() string {
	for _, name := range searchNames {
		p, err := xdg.SearchConfigFile(filepath.Join(AppName, name))
		if err == nil {
			return p
		}
	}
	return ""
}
