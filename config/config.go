// Package config loads receiptkit settings from defaults, an optional YAML
// file and RECEIPTKIT_* environment variables, in that order of precedence.
package config

import (
	"time"
)

// Config is the full application configuration.
type Config struct {
	Log     LogConfig     `koanf:"log"`
	Server  ServerConfig  `koanf:"server"`
	OCR     OCRConfig     `koanf:"ocr"`
	Surface SurfaceConfig `koanf:"surface"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `koanf:"json"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	MaxUploadBytes  int64         `koanf:"max_upload_bytes" validate:"gt=0"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
}

type OCRConfig struct {
	// Engine is "tesseract" or "noop".
	Engine    string   `koanf:"engine" validate:"oneof=tesseract noop"`
	Languages []string `koanf:"languages"`
	DPI       int      `koanf:"dpi" validate:"gte=0"`
	PSM       int      `koanf:"psm" validate:"gte=0,lte=13"`
}

type SurfaceConfig struct {
	MaxDimension int   `koanf:"max_dimension" validate:"gte=0"`
	MaxPixels    int64 `koanf:"max_pixels" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			MaxUploadBytes:  20 << 20,
			ReadTimeout:     30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		OCR: OCRConfig{
			Engine:    "tesseract",
			Languages: []string{"eng", "kor"},
			DPI:       300,
			PSM:       4,
		},
		Surface: SurfaceConfig{
			MaxDimension: 32768,
			MaxPixels:    64 * 1024 * 1024,
		},
	}
}
