// Package config loads robot, run and REPL settings from TOML or YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"robo-lang/internal/robot"
	"robo-lang/internal/runtime"
	"sort"
	"strings"

	"github.com/naoina/toml"
	"gopkg.in/yaml.v3"
)

// Config is the complete configuration of the robo tool.
type Config struct {
	Robot RobotConfig `toml:"robot" yaml:"robot"`
	Run   RunConfig   `toml:"run" yaml:"run"`
	Log   LogConfig   `toml:"log" yaml:"log"`
	REPL  REPLConfig  `toml:"repl" yaml:"repl"`
}

// RobotConfig configures the simulator host.
type RobotConfig struct {
	EchoCommands   bool                `toml:"echo_commands" yaml:"echo_commands"`
	DefaultReading string              `toml:"default_reading" yaml:"default_reading"`
	Sensors        map[string][]string `toml:"sensors" yaml:"sensors"` // readings per position, last repeats
}

type RunConfig struct {
	MaxCallDepth int `toml:"max_call_depth" yaml:"max_call_depth"`
}

type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

type REPLConfig struct {
	HistoryFile string `toml:"history_file" yaml:"history_file"`
	Prompt      string `toml:"prompt" yaml:"prompt"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Robot: RobotConfig{
			EchoCommands:   true,
			DefaultReading: robot.DefaultReading,
		},
		Run: RunConfig{MaxCallDepth: runtime.DefaultMaxDepth},
		Log: LogConfig{Level: "warn"},
		REPL: REPLConfig{
			HistoryFile: filepath.Join(os.TempDir(), ".robo_history"),
			Prompt:      "robo> ",
		},
	}
}

// Load reads path over the defaults. The decoder is chosen by extension:
// .toml, or .yaml / .yml.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("%s: unsupported config format %q", path, ext)
	}
	if err != nil {
		// Add file name to errors that carry a line number.
		return cfg, fmt.Errorf("%s, %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks sensor positions, the log level and the call limit.
func (c Config) Validate() error {
	var errs []error
	positions := make([]string, 0, len(c.Robot.Sensors))
	for pos := range c.Robot.Sensors {
		positions = append(positions, pos)
	}
	sort.Strings(positions)
	for _, pos := range positions {
		if !robot.IsPosition(pos) {
			errs = append(errs, fmt.Errorf("robot.sensors: %w: %q", robot.ErrUnknownPosition, pos))
		}
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Run.MaxCallDepth <= 0 {
		errs = append(errs, fmt.Errorf("run.max_call_depth must be positive, got %d", c.Run.MaxCallDepth))
	}
	return errors.Join(errs...)
}

// SlogLevel parses the configured level name.
func (c LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelWarn, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// Logger builds a text logger writing to w at the configured level.
func (c LogConfig) Logger(w io.Writer) *slog.Logger {
	level, _ := c.SlogLevel()
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// SimulatorOptions translates the robot section into simulator options.
func (c RobotConfig) SimulatorOptions() []robot.Option {
	opts := []robot.Option{
		robot.WithEcho(c.EchoCommands),
		robot.WithDefaultReading(c.DefaultReading),
	}
	for pos, readings := range c.Sensors {
		opts = append(opts, robot.WithSensorFeed(pos, readings...))
	}
	return opts
}
