// Package config loads the klarf tool settings from an HCL file.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/OpenTraceLab/OpenTraceKlarf/internal/ctxlog"
	"github.com/OpenTraceLab/OpenTraceKlarf/pkg/klarf"
)

// FileName is the name of the config file inside the config directory.
const FileName = "klarf.hcl"

// Config is the resolved tool configuration.
type Config struct {
	LogLevel   slog.Level
	Extensions []string
	View       View
}

// View holds the wafer map viewer settings.
type View struct {
	Width          int
	Height         int
	Theme          string
	PreserveAspect bool
	ShowDefects    bool
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:   slog.LevelInfo,
		Extensions: append([]string(nil), klarf.DefaultExtensions...),
		View: View{
			Width:       1000,
			Height:      800,
			Theme:       "classic",
			ShowDefects: true,
		},
	}
}

// fileRoot mirrors the file layout. Every attribute is optional; unset
// ones keep their default.
type fileRoot struct {
	LogLevel   *string    `hcl:"log_level,optional"`
	Extensions *[]string  `hcl:"extensions,optional"`
	View       *viewBlock `hcl:"view,block"`
}

type viewBlock struct {
	Width          *int    `hcl:"width,optional"`
	Height         *int    `hcl:"height,optional"`
	Theme          *string `hcl:"theme,optional"`
	PreserveAspect *bool   `hcl:"preserve_aspect,optional"`
	ShowDefects    *bool   `hcl:"show_defects,optional"`
}

// DefaultPath returns the platform config file location:
// %APPDATA%\OpenTraceKlarf on Windows, $XDG_CONFIG_HOME/opentraceklarf or
// ~/.config/opentraceklarf elsewhere.
func DefaultPath() (string, error) {
	if dir := os.Getenv("APPDATA"); dir != "" {
		return filepath.Join(dir, "OpenTraceKlarf", FileName), nil
	}
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "opentraceklarf", FileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "opentraceklarf", FileName), nil
}

// Load reads the config file at path over the defaults. A missing file is
// not an error.
func Load(ctx context.Context, path string) (*Config, error) {
	logger := ctxlog.FromContext(ctx)
	cfg := Default()

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("No config file, using defaults.", "path", path)
			return cfg, nil
		}
		return nil, fmt.Errorf("error accessing config %s: %w", path, err)
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(file.Body, nil, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, diags)
	}

	if err := root.apply(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	logger.Debug("Config loaded.", "path", path, "log_level", cfg.LogLevel, "theme", cfg.View.Theme)
	return cfg, nil
}

func (r *fileRoot) apply(cfg *Config) error {
	if r.LogLevel != nil {
		if err := cfg.LogLevel.UnmarshalText([]byte(*r.LogLevel)); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
	}
	if r.Extensions != nil {
		exts := make([]string, 0, len(*r.Extensions))
		for _, e := range *r.Extensions {
			e = strings.TrimSpace(e)
			if e == "" {
				continue
			}
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			exts = append(exts, e)
		}
		if len(exts) == 0 {
			return errors.New("extensions: empty list")
		}
		cfg.Extensions = exts
	}
	if v := r.View; v != nil {
		if v.Width != nil {
			cfg.View.Width = *v.Width
		}
		if v.Height != nil {
			cfg.View.Height = *v.Height
		}
		if v.Theme != nil {
			cfg.View.Theme = strings.ToLower(*v.Theme)
		}
		if v.PreserveAspect != nil {
			cfg.View.PreserveAspect = *v.PreserveAspect
		}
		if v.ShowDefects != nil {
			cfg.View.ShowDefects = *v.ShowDefects
		}
	}
	if cfg.View.Width <= 0 || cfg.View.Height <= 0 {
		return fmt.Errorf("view: size %dx%d must be positive", cfg.View.Width, cfg.View.Height)
	}
	return nil
}

// Save writes cfg to path as HCL, creating the directory if needed.
func Save(path string, cfg *Config) error {
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	body.SetAttributeValue("log_level", cty.StringVal(strings.ToLower(cfg.LogLevel.String())))

	exts := make([]cty.Value, len(cfg.Extensions))
	for i, e := range cfg.Extensions {
		exts[i] = cty.StringVal(e)
	}
	if len(exts) > 0 {
		body.SetAttributeValue("extensions", cty.ListVal(exts))
	}

	body.AppendNewline()
	view := body.AppendNewBlock("view", nil).Body()
	view.SetAttributeValue("width", cty.NumberIntVal(int64(cfg.View.Width)))
	view.SetAttributeValue("height", cty.NumberIntVal(int64(cfg.View.Height)))
	view.SetAttributeValue("theme", cty.StringVal(cfg.View.Theme))
	view.SetAttributeValue("preserve_aspect", cty.BoolVal(cfg.View.PreserveAspect))
	view.SetAttributeValue("show_defects", cty.BoolVal(cfg.View.ShowDefects))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, f.Bytes(), 0o644)
}
