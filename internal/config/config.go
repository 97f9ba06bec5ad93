// Package config loads command line settings from defaults, an optional
// YAML config file, CYLMESH_* environment variables and flags.
package config

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/soypat/cylmesh"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Output formats.
const (
	FormatOBJ = "obj"
	FormatSTL = "stl"
)

// StdoutPath as an output path writes the mesh to standard output.
const StdoutPath = "-"

// ConfigName is the base name of the config file searched for when no
// explicit file is given.
const ConfigName = ".cylmesh"

// Config holds all command settings.
type Config struct {
	Output   string        `mapstructure:"output"`
	// Format is FormatOBJ, FormatSTL or empty to pick by output extension.
	Format   string        `mapstructure:"format"`
	Header   string        `mapstructure:"header"`
	Log      LoggingConfig `mapstructure:"log"`
	Defaults ShapeConfig   `mapstructure:"defaults"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// ShapeConfig holds shape parameters used in place of absent or
// non-numeric positional arguments.
type ShapeConfig struct {
	Segments int     `mapstructure:"segments"`
	Radius   float64 `mapstructure:"radius"`
	Width    float64 `mapstructure:"width"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Output: "cylinder.obj",
		Format: "",
		Header: "OBJ file",
		Log: LoggingConfig{
			Level: "info",
		},
		Defaults: ShapeConfig{
			Segments: cylmesh.DefaultSegments,
			Radius:   cylmesh.DefaultRadius,
			Width:    cylmesh.DefaultWidth,
		},
	}
}

// Flag names bound to config keys.
var flagKeys = map[string]string{
	"output":    "output",
	"format":    "format",
	"header":    "header",
	"log-level": "log.level",
	"log-file":  "log.file",
}

// New returns a viper instance preloaded with defaults and environment
// variable bindings.
func New() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault("output", d.Output)
	v.SetDefault("format", d.Format)
	v.SetDefault("header", d.Header)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("defaults.segments", d.Defaults.Segments)
	v.SetDefault("defaults.radius", d.Defaults.Radius)
	v.SetDefault("defaults.width", d.Defaults.Width)
	v.SetEnvPrefix("cylmesh")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds the flags in fs that correspond to config keys.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// Load reads the config file and returns the merged settings. If file is
// empty ConfigName is searched for in the working directory and then the
// home directory; a missing file is not an error in that case.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the output format.
func (c Config) Validate() error {
	switch c.Format {
	case "", FormatOBJ, FormatSTL:
		return nil
	}
	return fmt.Errorf("unknown output format %q, want %q or %q", c.Format, FormatOBJ, FormatSTL)
}

// OutputFormat returns format if set. Otherwise it is FormatSTL for paths
// with a .stl extension and FormatOBJ for anything else.
func OutputFormat(path, format string) string {
	if format != "" {
		return format
	}
	if strings.EqualFold(filepath.Ext(path), "."+FormatSTL) {
		return FormatSTL
	}
	return FormatOBJ
}

// ConfigFileUsed returns the path of the config file read by v, if any.
func ConfigFileUsed(v *viper.Viper) string {
	if f := v.ConfigFileUsed(); f != "" {
		return filepath.Clean(f)
	}
	return ""
}

// ShapeArgs coerces up to three positional arguments into segments,
// radius and width. Absent or non-numeric arguments take the value from
// defaults. A fractional segments argument is truncated toward zero.
// The result is not validated.
func ShapeArgs(args []string, defaults ShapeConfig) (segments int, radius, width float64) {
	segments, radius, width = defaults.Segments, defaults.Radius, defaults.Width
	if len(args) > 0 {
		if f, ok := parseNumber(args[0]); ok && math.Abs(f) < math.MaxInt32 {
			segments = int(f)
		}
	}
	if len(args) > 1 {
		if f, ok := parseNumber(args[1]); ok {
			radius = f
		}
	}
	if len(args) > 2 {
		if f, ok := parseNumber(args[2]); ok {
			width = f
		}
	}
	return segments, radius, width
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Shape returns validated shape parameters from positional arguments.
func (c Config) Shape(args []string) (cylmesh.ShapeParameters, error) {
	return cylmesh.NewShape(ShapeArgs(args, c.Defaults))
}
