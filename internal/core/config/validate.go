package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/violations/internal/core/violation"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration
// including file accessibility, export destinations and vocabularies. The
// configPath argument specifies the config file location to validate (empty
// string skips the config file check). This calls Validate() first for basic
// structural validation.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		c.validateExport(),
		c.validateTUI(),
		c.validateVocabulary(),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if c.Storage.Driver == DriverMemory {
		warnings = append(warnings, ValidationWarning{
			Category: "Storage",
			Item:     "driver",
			Message:  "memory driver keeps nothing between runs",
		})
	}

	if c.Export.S3.AccessKeyID != "" && c.Export.S3.SecretAccessKey == "" {
		warnings = append(warnings, ValidationWarning{
			Category: "Export",
			Item:     "s3.secret_access_key",
			Message:  "access key set without a secret; the default credential chain will be used",
		})
	}

	return warnings
}

func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func (c *Config) validateExport() error {
	var errs criterio.FieldErrorsBuilder

	if strings.HasPrefix(c.Export.Dest, "s3://") {
		if _, _, err := ParseS3URL(c.Export.Dest); err != nil {
			errs = errs.Append("export.dest", err)
		}
	} else if err := isDirectoryOrNotExist(c.Export.Dest); err != nil {
		errs = errs.Append("export.dest", err)
	}

	if c.Export.S3.Endpoint != "" {
		u, err := url.Parse(c.Export.S3.Endpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = errs.Append("export.s3.endpoint", fmt.Errorf("must be an absolute URL, got %q", c.Export.S3.Endpoint))
		}
	}

	return errs.ToError()
}

func (c *Config) validateTUI() error {
	return criterio.Run("tui.theme", c.TUI.Theme, func(theme string) error {
		if !slices.Contains(Themes, theme) {
			return fmt.Errorf("unknown theme %q (want one of %s)", theme, strings.Join(Themes, ", "))
		}
		return nil
	})
}

func (c *Config) validateVocabulary() error {
	var errs criterio.FieldErrorsBuilder

	check := func(name string, opts []Option) {
		seen := make(map[string]bool, len(opts))
		for i, o := range opts {
			field := fmt.Sprintf("vocabulary.%s[%d]", name, i)
			if strings.TrimSpace(o.Value) == "" {
				errs = errs.Append(field+".value", fmt.Errorf("cannot be empty"))
				continue
			}
			if seen[o.Value] {
				errs = errs.Append(field+".value", fmt.Errorf("duplicate value %q", o.Value))
			}
			seen[o.Value] = true
		}
	}

	check("types", c.Vocabulary.Types)
	check("priorities", c.Vocabulary.Priorities)
	check("statuses", c.Vocabulary.Statuses)

	for i, o := range c.Vocabulary.Statuses {
		if !violation.Status(o.Value).IsValid() {
			errs = errs.Append(fmt.Sprintf("vocabulary.statuses[%d].value", i), fmt.Errorf("%q is not a status", o.Value))
		}
	}

	return errs.ToError()
}

// ParseS3URL splits s3://bucket/prefix into bucket and key prefix.
func ParseS3URL(raw string) (bucket, prefix string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid s3 url %q: %w", raw, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("invalid s3 url %q: want s3://bucket/prefix", raw)
	}
	return u.Host, strings.Trim(u.Path, "/"), nil
}
