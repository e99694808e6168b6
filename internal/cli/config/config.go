// Package config loads and validates mdboy CLI configuration from defaults,
// config file, profile, environment and flags, producing a populated
// mdboy.Options and the application logger.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/GRAYgoose124/mdboy/pkg/mdboy"
	"github.com/GRAYgoose124/mdboy/pkg/mdboy/plugins"
)

const (
	// EnvPrefix namespaces environment overrides (e.g. MDBOY_ROOT).
	EnvPrefix = "MDBOY"
	// DefaultConfigName is the base name of the config file searched for in
	// the working directory and the user config directories.
	DefaultConfigName = "mdboy"
)

// LoadAndValidate loads configuration from all sources (defaults, file,
// profile, env, flags), validates the merged result, and sets up the logger.
// Returns the populated Options or an error.
func LoadAndValidate(cfgFile, profileName string, verbose bool, flags *pflag.FlagSet) (mdboy.Options, *slog.Logger, error) {
	var opts mdboy.Options
	v := viper.New()

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler)

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			logger.Error("Failed to get user home directory", slog.Any("error", err))
			return opts, logger, fmt.Errorf("failed to get user home directory: %w", err)
		}
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(home, ".config", DefaultConfigName))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			logger.Debug("No configuration file found, using defaults/env/flags")
		} else {
			used := cfgFile
			if used == "" {
				used = fmt.Sprintf("searched locations for %s.yaml", DefaultConfigName)
			}
			logger.Error("Error reading configuration file",
				slog.String("path", used), slog.Any("error", err))
			return opts, logger, fmt.Errorf("error reading config file %q: %w", used, err)
		}
	} else {
		opts.ConfigFilePath = v.ConfigFileUsed()
		logger.Debug("Using configuration file", slog.String("path", opts.ConfigFilePath))
	}

	opts.ProfileName = profileName
	if profileName != "" {
		profileKey := "profiles." + profileName
		if !v.IsSet(profileKey) {
			used := v.ConfigFileUsed()
			if used == "" {
				used = "(no config file found)"
			}
			err := fmt.Errorf("profile %q not found in config file %q", profileName, used)
			logger.Error(err.Error())
			return opts, logger, err
		}
		profile := v.Sub(profileKey)
		if profile == nil {
			err := fmt.Errorf("failed to load profile %q from %q", profileName, v.ConfigFileUsed())
			logger.Error(err.Error())
			return opts, logger, err
		}
		if err := v.MergeConfigMap(profile.AllSettings()); err != nil {
			logger.Error("Error merging profile",
				slog.String("profile", profileName), slog.Any("error", err))
			return opts, logger, fmt.Errorf("error merging profile %q: %w", profileName, err)
		}
		logger.Debug("Applied configuration profile", slog.String("profile", profileName))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return opts, logger, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	if err := v.Unmarshal(&opts); err != nil {
		logger.Error("Failed to decode configuration", slog.Any("error", err))
		return opts, logger, fmt.Errorf("%w: %v", mdboy.ErrConfigValidation, err)
	}
	opts.Verbose = verbose || opts.Verbose
	opts.Logger = handler

	if err := validate(&opts, logger); err != nil {
		return opts, logger, err
	}
	return opts, logger, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("root", "")
	v.SetDefault("extension", mdboy.DefaultExtension)
	v.SetDefault("outputFormat", string(mdboy.OutputFormatText))
	v.SetDefault("defaultEncoding", "")
	v.SetDefault("dryRun", false)
	v.SetDefault("diffOnly", false)
	v.SetDefault("plugins", []mdboy.PluginSpec{})
}

func validate(opts *mdboy.Options, logger *slog.Logger) error {
	if !slices.Contains([]mdboy.OutputFormat{mdboy.OutputFormatText, mdboy.OutputFormatJSON}, opts.OutputFormat) {
		return fmt.Errorf("%w: outputFormat must be one of [text json], got %q",
			mdboy.ErrConfigValidation, opts.OutputFormat)
	}
	if opts.Extension != "" && !strings.HasPrefix(opts.Extension, ".") {
		return fmt.Errorf("%w: extension must start with '.', got %q",
			mdboy.ErrConfigValidation, opts.Extension)
	}
	if opts.Root != "" {
		if info, err := os.Stat(opts.Root); err != nil || !info.IsDir() {
			// Same policy as scope registration: record, warn, let the run
			// resolve zero documents if the path never materializes.
			logger.Warn("Configured root is not a directory", slog.String("root", opts.Root))
		}
	}
	known := plugins.Kinds()
	seen := make(map[string]bool)
	for _, spec := range opts.Plugins {
		if !slices.Contains(known, spec.Name) {
			return fmt.Errorf("%w: unknown plugin %q (have %v)",
				mdboy.ErrConfigValidation, spec.Name, known)
		}
		if seen[spec.Name] {
			return fmt.Errorf("%w: plugin %q enabled twice; one instance per kind",
				mdboy.ErrConfigValidation, spec.Name)
		}
		seen[spec.Name] = true
	}
	return nil
}
