// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package smaa

import (
	"io/fs"
	"log/slog"

	"github.com/gogpu/smaa/lut"
	"github.com/gogpu/smaa/shader"
)

// Option configures an Antialiaser during creation.
//
// Example:
//
//	aa, err := smaa.New(dev, 800, 600,
//		smaa.WithQuality(smaa.QualityHigh),
//		smaa.WithDebug(smaa.DebugEdges),
//	)
type Option func(*options)

// options holds optional configuration for Antialiaser creation.
type options struct {
	quality Quality
	debug   DebugMode
	tables  func() (*lut.Tables, error)
	library map[shader.Language]string
	logger  *slog.Logger
}

// defaultOptions returns the default options: ultra quality, no debug
// overlay, generated lookup tables.
func defaultOptions() options {
	return options{
		quality: QualityUltra,
		debug:   DebugNone,
		tables: func() (*lut.Tables, error) {
			return lut.Generate(), nil
		},
		library: map[shader.Language]string{},
	}
}

// WithQuality sets the initial quality.
func WithQuality(q Quality) Option {
	return func(o *options) {
		o.quality = q
	}
}

// WithDebug sets the initial debug mode.
func WithDebug(m DebugMode) Option {
	return func(o *options) {
		o.debug = m
	}
}

// WithLookupTables uses already loaded tables instead of generating them.
// The tables are validated on every pipeline build.
func WithLookupTables(t *lut.Tables) Option {
	return func(o *options) {
		o.tables = func() (*lut.Tables, error) {
			if t == nil {
				return nil, lut.ErrMissing
			}
			if err := t.Validate(); err != nil {
				return nil, err
			}
			return t, nil
		}
	}
}

// WithLookupFS reads the raw tables from fsys on every pipeline build.
//
// Example:
//
//	smaa.WithLookupFS(os.DirFS("assets"), lut.AreaFile, lut.SearchFile)
func WithLookupFS(fsys fs.FS, areaName, searchName string) Option {
	return func(o *options) {
		o.tables = func() (*lut.Tables, error) {
			return lut.Load(fsys, areaName, searchName)
		}
	}
}

// WithLibrary replaces the embedded effect library. Empty strings keep the
// embedded library for that language.
func WithLibrary(glsl, wgsl string) Option {
	return func(o *options) {
		o.library[shader.GLSL] = glsl
		o.library[shader.WGSL] = wgsl
	}
}

// WithLogger sets the logger of the antialiaser and its device. Without
// it the package logger (see SetLogger) is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
