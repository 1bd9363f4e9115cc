package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/iVampireSP/hiltagg/internal/classname"
	"github.com/iVampireSP/hiltagg/internal/ir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Option keys. Flags, env vars (HILT_ prefix, '-' → '_'), hilt.yaml and
// //hilt:option directives in generate.go all use them.
const (
	keyMetadataDir                      = "metadata-dir"
	keyOutputDir                        = "output-dir"
	keyPackages                         = "packages"
	keyExclude                          = "exclude"
	keyDisableCrossCompilationRootValid = "disable-cross-compilation-root-validation"
	keyShareTestComponents              = "share-test-components"
	keyDefaultRoot                      = "default-root"
	keySharedDestinationPackage         = "shared-destination-package"
	keyEarlyEntryPointExcluded          = "early-entry-point-excluded-components"
)

var optionKeys = []string{
	keyMetadataDir,
	keyOutputDir,
	keyPackages,
	keyExclude,
	keyDisableCrossCompilationRootValid,
	keyShareTestComponents,
	keyDefaultRoot,
	keySharedDestinationPackage,
	keyEarlyEntryPointExcluded,
}

// processorOptions maps the annotation processor option names to our keys,
// so generate.go can carry the same -A options a Gradle build would pass.
var processorOptions = map[string]string{
	"dagger.hilt.disableCrossCompilationRootValidation": keyDisableCrossCompilationRootValid,
	"dagger.hilt.shareTestComponents":                   keyShareTestComponents,
}

// Config holds hiltagg configuration, merged from conventions, generate.go
// directives, hilt.yaml, the environment and flags (lowest to highest).
type Config struct {
	Module string `mapstructure:"-"` // from go.mod, empty outside a module
	Root   string `mapstructure:"-"` // directory all relative paths resolve against

	MetadataDir string   `mapstructure:"metadata-dir"`
	OutputDir   string   `mapstructure:"output-dir"`
	Packages    []string `mapstructure:"packages"` // go/packages patterns holding //hilt: markers
	Exclude     []string `mapstructure:"exclude"`  // gitignore-style patterns

	DisableCrossCompilationRootValidation bool `mapstructure:"disable-cross-compilation-root-validation"`
	ShareTestComponents                   bool `mapstructure:"share-test-components"`

	DefaultRoot                       string   `mapstructure:"default-root"`
	SharedDestinationPackage          string   `mapstructure:"shared-destination-package"`
	EarlyEntryPointExcludedComponents []string `mapstructure:"early-entry-point-excluded-components"`
}

// setDefaults registers convention defaults.
func setDefaults(v *viper.Viper) {
	defaults := ir.DefaultOptions()
	var excluded []string
	for _, c := range defaults.EarlyEntryPointExcludedComponents {
		excluded = append(excluded, c.String())
	}

	v.SetDefault(keyMetadataDir, "build/hilt")
	v.SetDefault(keyOutputDir, "")
	v.SetDefault(keyPackages, []string{})
	v.SetDefault(keyExclude, []string{})
	v.SetDefault(keyDisableCrossCompilationRootValid, false)
	v.SetDefault(keyShareTestComponents, false)
	v.SetDefault(keyDefaultRoot, defaults.DefaultRoot.String())
	v.SetDefault(keySharedDestinationPackage, defaults.SharedDestinationPackage)
	v.SetDefault(keyEarlyEntryPointExcluded, excluded)
}

// LoadConfig resolves the configuration for the module rooted at root.
// configFile, when set, replaces the hilt.yaml lookup. flags may be nil.
func LoadConfig(root, configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	module, err := parseModulePath(root)
	if err != nil && !errors.Is(err, errNoGoMod) {
		return nil, err
	}

	// generate.go directives only move defaults; everything else wins.
	directives, err := parseGenerateFile(root)
	if err != nil {
		return nil, err
	}
	for key, value := range directives {
		v.SetDefault(key, value)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(root)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("HILT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	// Processor option names are dotted, so viper nests them in hilt.yaml
	// and reads HILT_DAGGER_HILT_* from the environment. They rank with
	// hilt.yaml and env: only an explicit flag beats them.
	for alias, key := range processorOptions {
		if !v.IsSet(alias) {
			continue
		}
		if flags != nil {
			if f := flags.Lookup(key); f != nil && f.Changed {
				continue
			}
		}
		v.Set(key, v.Get(alias))
	}

	cfg := &Config{Module: module, Root: root}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = cfg.MetadataDir
	}
	cfg.MetadataDir = cfg.resolve(cfg.MetadataDir)
	cfg.OutputDir = cfg.resolve(cfg.OutputDir)
	return cfg, nil
}

func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Root, path)
}

// PassOptions converts the configuration into processing options.
func (c *Config) PassOptions() (ir.PassOptions, error) {
	defaultRoot, err := classname.Parse(c.DefaultRoot)
	if err != nil {
		return ir.PassOptions{}, fmt.Errorf("%s: %w", keyDefaultRoot, err)
	}

	var excluded []classname.ClassName
	for _, s := range c.EarlyEntryPointExcludedComponents {
		comp, err := classname.Parse(s)
		if err != nil {
			return ir.PassOptions{}, fmt.Errorf("%s: %w", keyEarlyEntryPointExcluded, err)
		}
		if !comp.IsZero() {
			excluded = append(excluded, comp)
		}
	}

	return ir.PassOptions{
		Options: ir.Options{
			SharedTestComponents:              c.ShareTestComponents,
			DefaultRoot:                       defaultRoot,
			SharedDestinationPackage:          c.SharedDestinationPackage,
			EarlyEntryPointExcludedComponents: excluded,
		},
		DisableCrossCompilationRootValidation: c.DisableCrossCompilationRootValidation,
	}, nil
}
