// Package config assembles the settings of a sqlmongo invocation.
//
// Settings are layered, later layers winning:
//
//  1. built-in defaults
//  2. a config.properties file (key=value lines)
//  3. SQLMONGO_* environment variables (SQLMONGO_URI sets uri)
//  4. command-line flags
//  5. key=value arguments
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/sqlmongo/internal/format"
)

// Setting keys, as written in config.properties and key=value arguments.
const (
	KeyURI          = "uri"
	KeyQuery        = "query"
	KeyOutput       = "output"
	KeyPadding      = "padding"
	KeyNullValue    = "nullValue"
	KeyDateFormat   = "dateFormat"
	KeyCSVSeparator = "csvSeparator"
)

// DefaultFile is read from the working directory when present.
const DefaultFile = "config.properties"

// EnvPrefix prefixes environment variable names.
const EnvPrefix = "SQLMONGO"

// examples are shown when a required setting is missing.
var examples = map[string]string{
	KeyURI:   "mongodb://localhost:27017/mydb",
	KeyQuery: "select userEmail from coupons where couponState = 4",
}

// flagKeys maps flag names to setting keys.
var flagKeys = map[string]string{
	"uri":           KeyURI,
	"query":         KeyQuery,
	"output":        KeyOutput,
	"padding":       KeyPadding,
	"null-value":    KeyNullValue,
	"date-format":   KeyDateFormat,
	"csv-separator": KeyCSVSeparator,
}

var argPattern = regexp.MustCompile(`^([a-zA-Z0-9]+)=(.+)$`)

// Config is the resolved configuration.
type Config struct {
	URI          string `mapstructure:"uri"`
	Query        string `mapstructure:"query"`
	Output       string `mapstructure:"output"`
	Padding      int    `mapstructure:"padding"`
	NullValue    string `mapstructure:"nullvalue"`
	DateFormat   string `mapstructure:"dateformat"`
	CSVSeparator string `mapstructure:"csvseparator"`

	dateLayout string
	separator  rune
}

// Loader collects the configuration layers.
type Loader struct {
	v *viper.Viper
}

// NewLoader returns a Loader holding the defaults and reading the
// environment.
func NewLoader() *Loader {
	v := viper.New()
	v.SetDefault(KeyURI, "")
	v.SetDefault(KeyQuery, "")
	v.SetDefault(KeyOutput, format.OutputHorizontal)
	v.SetDefault(KeyPadding, 40)
	v.SetDefault(KeyNullValue, "")
	v.SetDefault(KeyDateFormat, format.DefaultDateLayout)
	v.SetDefault(KeyCSVSeparator, ",")

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	return &Loader{v: v}
}

// ReadFile reads key=value settings from path. An empty path reads
// DefaultFile if it exists; a path given explicitly must exist.
func (l *Loader) ReadFile(path string) error {
	optional := path == ""
	if optional {
		path = DefaultFile
	}
	if _, err := os.Stat(path); err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config file: %w", err)
	}

	l.v.SetConfigFile(path)
	l.v.SetConfigType("env")
	if err := l.v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	return nil
}

// BindFlags binds the known setting flags present in fs. A flag only takes
// effect when it was set.
func (l *Loader) BindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := l.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

// ApplyArgs applies key=value arguments.
func (l *Loader) ApplyArgs(args []string) error {
	for _, arg := range args {
		m := argPattern.FindStringSubmatch(arg)
		if m == nil {
			return &ArgError{Arg: arg}
		}
		l.v.Set(m[1], m[2])
	}
	return nil
}

// Set overrides one setting.
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

// Load resolves and validates the layers.
func (l *Loader) Load() (*Config, error) {
	var c Config
	if err := l.v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if c.Padding < 0 {
		return nil, fmt.Errorf("invalid %s %d: must not be negative", KeyPadding, c.Padding)
	}

	layout, err := DateLayout(c.DateFormat)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyDateFormat, err)
	}
	c.dateLayout = layout

	sep, err := separator(c.CSVSeparator)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyCSVSeparator, err)
	}
	c.separator = sep

	return &c, nil
}

// separator reads a CSV separator. Like the original tool it takes the first
// character; "tab" and `\t` name a tab.
func separator(s string) (rune, error) {
	switch s {
	case "":
		return 0, errors.New("empty separator")
	case "tab", `\t`:
		return '\t', nil
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("%q cannot separate CSV cells", r)
	}
	return r, nil
}

// Require reports the first of keys that has no value.
func (c *Config) Require(keys ...string) error {
	for _, key := range keys {
		var v string
		switch key {
		case KeyURI:
			v = c.URI
		case KeyQuery:
			v = c.Query
		case KeyOutput:
			v = c.Output
		default:
			return fmt.Errorf("setting %q cannot be required", key)
		}
		if strings.TrimSpace(v) == "" {
			return &MissingError{Key: key, Example: examples[key]}
		}
	}
	return nil
}

// Format returns the presentation settings.
func (c *Config) Format() format.Config {
	return format.Config{
		Output:       c.Output,
		Padding:      c.Padding,
		NullValue:    c.NullValue,
		DateLayout:   c.dateLayout,
		CSVSeparator: c.separator,
	}
}

// MissingError reports a required setting that was not provided.
type MissingError struct {
	Key     string
	Example string
}

func (e *MissingError) Error() string {
	msg := fmt.Sprintf("please provide %s through %q file, %s_%s or command line option",
		e.Key, DefaultFile, EnvPrefix, strings.ToUpper(e.Key))
	if e.Example != "" {
		msg += fmt.Sprintf(" e.g. \"%s=%s\"", e.Key, e.Example)
	}
	return msg
}

// ArgError reports an argument not of the form key=value.
type ArgError struct {
	Arg string
}

func (e *ArgError) Error() string {
	return fmt.Sprintf("unexpected option: %s (format: key=value)", e.Arg)
}

// IsMissingError reports whether err is or wraps a *MissingError.
func IsMissingError(err error) bool {
	var me *MissingError
	return errors.As(err, &me)
}

// IsArgError reports whether err is or wraps an *ArgError.
func IsArgError(err error) bool {
	var ae *ArgError
	return errors.As(err, &ae)
}
