// Package config holds the settings of one run.
//
// Defaults come from RR_* environment variables (see the env tags), the
// command line overrides them, and Validate checks the result before any
// file is touched.
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/mattn/go-isatty"
	"gitlab.com/tozd/go/errors"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "RR_"

// Version of the rr binary
const Version = "0.3.0"

// ErrConfig marks settings that make a run impossible
var ErrConfig = errors.Base("invalid configuration")

// Accepted values of the enumerated settings
var (
	Engines       = []string{"re2", "regexp2"}
	OutputFormats = []string{"text", "json", "yaml"}
	LogFormats    = []string{"text", "json"}
)

// Config holds all application configuration settings
type Config struct {
	// What to replace
	Pattern     string
	Replacement string
	Engine      string `env:"ENGINE" envDefault:"re2"`

	// Where
	RootDir       string   `env:"DIR" envDefault:"."`
	Extensions    []string `env:"EXTENSIONS" envSeparator:","` // nil: all extensions
	IncludeHidden bool     `env:"INCLUDE_HIDDEN"`

	// Ignore rules
	RespectGitignore bool     `env:"GITIGNORE"`
	DefaultIgnores   bool     `env:"DEFAULT_IGNORES" envDefault:"true"`
	CustomIgnore     []string `env:"IGNORE" envSeparator:","`

	// Processing settings
	DryRun        bool          `env:"DRY_RUN"`
	ShowDiff      bool          `env:"DIFF"`
	Workers       int           `env:"WORKERS"` // 0: one per CPU
	MaxFileSizeMB int64         `env:"MAX_SIZE_MB"`
	Timeout       time.Duration `env:"TIMEOUT"`

	// Logging and output
	Verbose      bool   `env:"VERBOSE"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"text"`
	NoColor      bool   `env:"NO_COLOR"`
	// UseColors applies to the log on stderr, OutputColors to the summary
	// on stdout
	UseColors    bool
	OutputColors bool
	OutputFormat string `env:"FORMAT" envDefault:"text"`

	// Locations of the working directory and home ignore files
	WorkDir string
	HomeDir string
}

// FromEnv returns a Config holding the defaults, overridden by the process
// environment
func FromEnv() (*Config, error) {
	return parse(nil)
}

// parse reads environ instead of the process environment when it is non-nil
func parse(environ map[string]string) (*Config, error) {
	c := &Config{}
	if err := env.ParseWithOptions(c, env.Options{
		Prefix:      EnvPrefix,
		Environment: environ,
	}); err != nil {
		return nil, errors.Errorf("%w: environment: %s", ErrConfig, err.Error())
	}
	return c, nil
}

// Resolve fills the fields derived from the host: worker count, working
// and home directories, and whether stderr and stdout get colours.
func (c *Config) Resolve() {
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.WorkDir == "" {
		if wd, err := os.Getwd(); err == nil {
			c.WorkDir = wd
		}
	}
	if c.HomeDir == "" {
		// no home directory just means one ignore file fewer
		if home, err := os.UserHomeDir(); err == nil {
			c.HomeDir = home
		}
	}
	c.UseColors, c.OutputColors = colorsFor(c.NoColor,
		isatty.IsTerminal(os.Stderr.Fd()),
		isatty.IsTerminal(os.Stdout.Fd()),
	)
}

// colorsFor decides the stderr log and the stdout summary separately
func colorsFor(noColor, stderrTTY, stdoutTTY bool) (stderr, stdout bool) {
	if noColor {
		return false, false
	}
	return stderrTTY, stdoutTTY
}

// Validate checks the configuration and normalises list fields. RootDir is
// made absolute.
func (c *Config) Validate() error {
	if c.Pattern == "" {
		return errors.Errorf("%w: a pattern is required", ErrConfig)
	}

	if c.RootDir == "" {
		c.RootDir = "."
	}
	abs, err := filepath.Abs(c.RootDir)
	if err != nil {
		return errors.Errorf("%w: root directory %q: %s", ErrConfig, c.RootDir, err.Error())
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Errorf("%w: root directory %q not found", ErrConfig, abs)
		}
		return errors.Errorf("%w: could not access root directory %q: %s", ErrConfig, abs, err.Error())
	}
	if !info.IsDir() {
		return errors.Errorf("%w: %q is not a directory", ErrConfig, abs)
	}
	c.RootDir = abs

	if c.Engine == "" {
		c.Engine = Engines[0]
	}
	if !slices.Contains(Engines, c.Engine) {
		return errors.Errorf("%w: unknown engine %q (want one of %s)", ErrConfig, c.Engine, strings.Join(Engines, ", "))
	}
	if c.OutputFormat == "" {
		c.OutputFormat = OutputFormats[0]
	}
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return errors.Errorf("%w: unknown output format %q (want one of %s)", ErrConfig, c.OutputFormat, strings.Join(OutputFormats, ", "))
	}
	if c.LogFormat == "" {
		c.LogFormat = LogFormats[0]
	}
	if !slices.Contains(LogFormats, c.LogFormat) {
		return errors.Errorf("%w: unknown log format %q (want one of %s)", ErrConfig, c.LogFormat, strings.Join(LogFormats, ", "))
	}

	if c.Workers < 0 {
		return errors.Errorf("%w: workers must not be negative, got %d", ErrConfig, c.Workers)
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.MaxFileSizeMB < 0 {
		return errors.Errorf("%w: max size must not be negative, got %d", ErrConfig, c.MaxFileSizeMB)
	}
	if c.Timeout < 0 {
		return errors.Errorf("%w: timeout must not be negative, got %s", ErrConfig, c.Timeout)
	}

	if c.Extensions != nil {
		c.Extensions = SplitList(c.Extensions, ".")
	}
	c.CustomIgnore = SplitList(c.CustomIgnore, "")
	return nil
}

// MaxFileSizeBytes converts MaxFileSizeMB; 0 means no limit
func (c *Config) MaxFileSizeBytes() int64 {
	return c.MaxFileSizeMB * 1024 * 1024
}

// SplitList splits comma separated entries, trims spaces and the given
// prefix from each one and drops empty entries. The result is non-nil.
func SplitList(values []string, trimPrefix string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if trimPrefix != "" {
				part = strings.TrimPrefix(part, trimPrefix)
			}
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
