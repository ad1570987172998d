package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/violations/internal/core/config"
	"github.com/colonyops/violations/internal/core/violation"
)

// ConfigCheck validates the loaded configuration and its source file.
type ConfigCheck struct {
	cfg  *config.Config
	path string
}

func NewConfigCheck(cfg *config.Config, path string) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, path: path}
}

func (c *ConfigCheck) Name() string {
	return "Configuration"
}

func (c *ConfigCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	switch _, err := os.Stat(c.path); {
	case c.path == "":
		result.add("config file", StatusPass, "none given, using defaults")
	case os.IsNotExist(err):
		result.add("config file", StatusWarn, c.path+" not found, using defaults")
	case err != nil:
		result.add("config file", StatusFail, err.Error())
	default:
		result.add("config file", StatusPass, c.path)
	}

	if err := c.cfg.ValidateDeep(c.path); err != nil {
		var fieldErrs criterio.FieldErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				result.add(fe.Field, StatusFail, fe.Err.Error())
			}
		} else {
			result.add("validation", StatusFail, err.Error())
		}
	} else {
		result.add("validation", StatusPass, "")
	}

	for _, w := range c.cfg.Warnings() {
		result.add(strings.ToLower(w.Category)+"."+w.Item, StatusWarn, w.Message)
	}

	return result
}

// DataDirCheck verifies the data directory exists and is writable.
type DataDirCheck struct {
	dir string
}

func NewDataDirCheck(dir string) *DataDirCheck {
	return &DataDirCheck{dir: dir}
}

func (c *DataDirCheck) Name() string {
	return "Data Directory"
}

func (c *DataDirCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}
	checkWritableDir(&result, c.dir)
	return result
}

func checkWritableDir(result *Result, dir string) {
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		result.add(dir, StatusWarn, "directory does not exist")
		return
	case err != nil:
		result.add(dir, StatusFail, fmt.Sprintf("inaccessible: %v", err))
		return
	case !info.IsDir():
		result.add(dir, StatusFail, "path is not a directory")
		return
	}

	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		result.add(dir, StatusFail, fmt.Sprintf("not writable: %v", err))
		return
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	result.add(dir, StatusPass, "writable")
}

// Ledger is the read side of the record store.
type Ledger interface {
	Records() []violation.Record
	Draft() violation.Draft
	Warnings() []error
	Dirty() bool
}

// StorageCheck reports on the loaded collection.
type StorageCheck struct {
	ledger Ledger
	driver string
}

func NewStorageCheck(l Ledger, driver string) *StorageCheck {
	return &StorageCheck{ledger: l, driver: driver}
}

func (c *StorageCheck) Name() string {
	return "Storage"
}

func (c *StorageCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}

	records := c.ledger.Records()
	result.add("driver", StatusPass, c.driver)
	result.add("records", StatusPass, fmt.Sprintf("%d loaded", len(records)))

	for _, w := range c.ledger.Warnings() {
		result.add("load", StatusWarn, w.Error())
	}

	if c.ledger.Dirty() {
		result.add("persistence", StatusFail, "memory holds changes that failed to save")
	}

	draft := c.ledger.Draft()
	if draft.Editing() {
		found := false
		for _, r := range records {
			found = found || r.ID == draft.EditTargetID
		}
		if found {
			result.add("draft", StatusPass, "editing "+draft.EditTargetID)
		} else {
			result.add("draft", StatusWarn, "bound to missing record "+draft.EditTargetID)
		}
	}

	return result
}

// ExportCheck verifies the configured export destination.
type ExportCheck struct {
	cfg config.ExportConfig
}

func NewExportCheck(cfg config.ExportConfig) *ExportCheck {
	return &ExportCheck{cfg: cfg}
}

func (c *ExportCheck) Name() string {
	return "Export"
}

func (c *ExportCheck) Run(_ context.Context) Result {
	result := Result{Name: c.Name()}
	result.add("format", StatusPass, c.cfg.Format)

	if !strings.HasPrefix(c.cfg.Dest, "s3://") {
		checkWritableDir(&result, c.cfg.Dest)
		return result
	}

	if _, _, err := config.ParseS3URL(c.cfg.Dest); err != nil {
		result.add(c.cfg.Dest, StatusFail, err.Error())
		return result
	}

	detail := "default credential chain"
	if c.cfg.S3.AccessKeyID != "" {
		detail = "static credentials"
	}
	result.add(c.cfg.Dest, StatusPass, detail)
	return result
}
