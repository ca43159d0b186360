package dirtreecheck

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-ini/ini"
)

// Config represents the dtcheck configuration
type Config struct {
	configPath string
	ini        *ini.File
}

// VerboseConfig represents verbosity configuration
type VerboseConfig struct {
	Level int    // Default verbose level (0=quiet, 1=basic, 2=detailed, 3=trace)
	Debug string // Default debug flags (comma-separated)
}

// ValidationConfig represents consistency-check configuration
type ValidationConfig struct {
	AfterMutation bool // Run the checker after every insert/remove (default: true)
}

// SnapshotConfig represents snapshot file configuration
type SnapshotConfig struct {
	Signature string // Snapshot file signature line (default: "dtsnap1")
}

// LoadConfig loads configuration from the .dirtree/config file under baseDir,
// creating a default config if none exists
func LoadConfig(baseDir string) (*Config, error) {
	configPath := filepath.Join(baseDir, ".dirtree", "config")

	cfg := &Config{
		configPath: configPath,
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg.ini = ini.Empty()
		if err := cfg.setDefaults(); err != nil {
			return nil, fmt.Errorf("failed to set default config: %w", err)
		}
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
	} else {
		iniFile, err := ini.Load(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		cfg.ini = iniFile
	}

	return cfg, nil
}

// setDefaults sets default configuration values
func (c *Config) setDefaults() error {
	verboseSection, err := c.ini.NewSection("verbose")
	if err != nil {
		return fmt.Errorf("failed to create verbose section: %w", err)
	}
	if _, err = verboseSection.NewKey("level", "0"); err != nil {
		return fmt.Errorf("failed to set default verbose level: %w", err)
	}
	if _, err = verboseSection.NewKey("debug", ""); err != nil {
		return fmt.Errorf("failed to set default debug flags: %w", err)
	}

	validationSection, err := c.ini.NewSection("validation")
	if err != nil {
		return fmt.Errorf("failed to create validation section: %w", err)
	}
	if _, err = validationSection.NewKey("after_mutation", "true"); err != nil {
		return fmt.Errorf("failed to set default after_mutation: %w", err)
	}

	snapshotSection, err := c.ini.NewSection("snapshot")
	if err != nil {
		return fmt.Errorf("failed to create snapshot section: %w", err)
	}
	if _, err = snapshotSection.NewKey("signature", SnapshotSignature); err != nil {
		return fmt.Errorf("failed to set default snapshot signature: %w", err)
	}

	return nil
}

// Save writes the configuration back to disk
func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := c.ini.SaveTo(c.configPath); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}

// GetVerboseConfig returns the verbose configuration
func (c *Config) GetVerboseConfig() *VerboseConfig {
	verboseConfig := &VerboseConfig{
		Level: 0,  // fallback default
		Debug: "", // fallback default
	}

	if c.ini.HasSection("verbose") {
		section := c.ini.Section("verbose")
		if section.HasKey("level") {
			if level, err := section.Key("level").Int(); err == nil {
				verboseConfig.Level = level
			}
		}
		if section.HasKey("debug") {
			verboseConfig.Debug = section.Key("debug").String()
		}
	}

	return verboseConfig
}

// GetValidationConfig returns the consistency-check configuration
func (c *Config) GetValidationConfig() *ValidationConfig {
	validationConfig := &ValidationConfig{
		AfterMutation: true, // fallback default
	}

	if c.ini.HasSection("validation") {
		section := c.ini.Section("validation")
		if section.HasKey("after_mutation") {
			if enabled, err := section.Key("after_mutation").Bool(); err == nil {
				validationConfig.AfterMutation = enabled
			}
		}
	}

	return validationConfig
}

// GetSnapshotConfig returns the snapshot configuration
func (c *Config) GetSnapshotConfig() *SnapshotConfig {
	snapshotConfig := &SnapshotConfig{
		Signature: SnapshotSignature, // fallback default
	}

	if c.ini.HasSection("snapshot") {
		section := c.ini.Section("snapshot")
		if section.HasKey("signature") {
			if sig := section.Key("signature").String(); sig != "" {
				snapshotConfig.Signature = sig
			}
		}
	}

	return snapshotConfig
}

// ApplyGlobals pushes the verbose configuration into the package globals
func (c *Config) ApplyGlobals() {
	verboseConfig := c.GetVerboseConfig()
	SetVerboseLevel(verboseConfig.Level)
	SetDebugFlags(verboseConfig.Debug)
}
