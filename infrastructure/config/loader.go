package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlConfig is the YAML structure of a configuration document.
type yamlConfig struct {
	Export struct {
		Path             string   `yaml:"path"`
		AutosaveInterval duration `yaml:"autosave_interval"`
	} `yaml:"export"`
	Annotation struct {
		DuplicateRadius int `yaml:"duplicate_radius"`
	} `yaml:"annotation"`
	Viewport struct {
		FitBudget float64 `yaml:"fit_budget"`
		ZoomStep  float64 `yaml:"zoom_step"`
		WheelStep float64 `yaml:"wheel_step"`
	} `yaml:"viewport"`
	Session struct {
		CommandBuffer   int      `yaml:"command_buffer"`
		ShutdownTimeout duration `yaml:"shutdown_timeout"`
	} `yaml:"session"`
	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`
	Archive struct {
		MongoDB struct {
			Enabled        bool     `yaml:"enabled"`
			URI            string   `yaml:"uri"`
			Database       string   `yaml:"database"`
			Collection     string   `yaml:"collection"`
			ConnectTimeout duration `yaml:"connect_timeout"`
			PingTimeout    duration `yaml:"ping_timeout"`
		} `yaml:"mongodb"`
	} `yaml:"archive"`
}

// duration is a wrapper for time.Duration that handles YAML parsing.
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Result describes where the loaded settings came from.
type Result struct {
	Config *Config
	// Overlay is the overlay file that was applied, empty if none was found.
	Overlay string
	// Invalid lists the settings that failed validation and were reset.
	Invalid error
}

// Load parses the default document, applies the first existing overlay file
// from overlayPaths, and validates the result. Missing overlay files are not
// an error; unreadable or malformed ones are.
func Load(defaults []byte, overlayPaths ...string) (*Result, error) {
	var yc yamlConfig
	if err := yaml.Unmarshal(defaults, &yc); err != nil {
		return nil, fmt.Errorf("failed to parse default config: %w", err)
	}

	res := &Result{}
	for _, path := range overlayPaths {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		// Decoding into the populated struct overrides only the keys present.
		if err := yaml.Unmarshal(data, &yc); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		res.Overlay = path
		break
	}

	res.Config = convertYAMLConfig(&yc)
	res.Invalid = res.Config.Validate()
	return res, nil
}

func convertYAMLConfig(yc *yamlConfig) *Config {
	m := yc.Archive.MongoDB
	return &Config{
		Export: ExportConfig{
			Path:             yc.Export.Path,
			AutosaveInterval: time.Duration(yc.Export.AutosaveInterval),
		},
		Annotation: AnnotationConfig{
			DuplicateRadius: yc.Annotation.DuplicateRadius,
		},
		Viewport: ViewportConfig{
			FitBudget: yc.Viewport.FitBudget,
			ZoomStep:  yc.Viewport.ZoomStep,
			WheelStep: yc.Viewport.WheelStep,
		},
		Session: SessionConfig{
			CommandBuffer:   yc.Session.CommandBuffer,
			ShutdownTimeout: time.Duration(yc.Session.ShutdownTimeout),
		},
		Logging: LoggingConfig{
			Level: yc.Logging.Level,
			Dir:   yc.Logging.Dir,
		},
		Archive: ArchiveConfig{
			MongoDB: MongoDBConfig{
				Enabled:        m.Enabled,
				URI:            m.URI,
				Database:       m.Database,
				Collection:     m.Collection,
				ConnectTimeout: time.Duration(m.ConnectTimeout),
				PingTimeout:    time.Duration(m.PingTimeout),
			},
		},
	}
}
