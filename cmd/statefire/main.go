// Command statefire renders a YAML state machine definition as a DOT or
// Mermaid diagram.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/statefire/statefire"
	"github.com/statefire/statefire/def"
	"github.com/statefire/statefire/graph"
)

type config struct {
	Format    string `env:"STATEFIRE_FORMAT" envDefault:"dot"`
	Direction string `env:"STATEFIRE_DIRECTION" envDefault:"TB"`
	Output    string `env:"STATEFIRE_OUTPUT"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

func main() {
	// The .env file might not exist and that's ok.
	_ = godotenv.Load()

	var c config
	if err := env.Parse(&c); err != nil {
		fmt.Fprintf(os.Stderr, "parse environment: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(c)
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <definition.yaml>\n", os.Args[0])
		os.Exit(2)
	}

	if err := run(c, os.Args[1]); err != nil {
		logger.Error("render failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(c config, path string) error {
	d, err := def.Load(path)
	if err != nil {
		return err
	}

	cfg, err := def.Build(d, def.StubBindings(d))
	if err != nil {
		return err
	}

	machine := statefire.NewStateMachineWithConfig(d.Initial, cfg)
	info := machine.Info()

	slog.Debug("definition loaded",
		slog.String("machine", cfg.Name()),
		slog.Int("states", len(info.States)))

	var rendered string
	switch c.Format {
	case "dot":
		rendered = graph.UmlDotGraph(info)
	case "mermaid":
		direction, err := parseDirection(c.Direction)
		if err != nil {
			return err
		}
		rendered = graph.MermaidGraph(info, direction)
	default:
		return fmt.Errorf("unknown format %q, expected dot or mermaid", c.Format)
	}

	if c.Output == "" {
		fmt.Println(rendered)
		return nil
	}
	return os.WriteFile(c.Output, []byte(rendered+"\n"), 0o644)
}

func parseDirection(s string) (graph.MermaidGraphDirection, error) {
	switch s {
	case "TB":
		return graph.TopToBottom, nil
	case "BT":
		return graph.BottomToTop, nil
	case "LR":
		return graph.LeftToRight, nil
	case "RL":
		return graph.RightToLeft, nil
	}
	return 0, fmt.Errorf("unknown direction %q, expected TB, BT, LR or RL", s)
}

func newLogger(c config) *slog.Logger {
	var level slog.Level
	switch c.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// Diagrams go to stdout, logs to stderr.
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
