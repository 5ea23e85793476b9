// viewviz читает base64 PNG из stdin (например, ответ /visualize-route) и пишет файл.
package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const flagOutput = "output"

func main() {
	if err := newApp(os.Stdin, zap.NewNop()).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp собирает CLI; входные данные читаются из in
func newApp(in io.Reader, logger *zap.Logger) *cli.App {
	return &cli.App{
		Name:      "viewviz",
		Usage:     "decode a base64 visualization into a PNG file",
		UsageText: "viewviz [--output FILE] < response.json",
		Reader:    in,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagOutput,
				Aliases: []string{"o"},
				Value:   "visualization.png",
				Usage:   "write PNG to `FILE`",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if !c.Bool("debug") {
				return nil
			}
			dev, err := zap.NewDevelopment()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logger = dev
			return nil
		},
		Action: func(c *cli.Context) error {
			defer func() { _ = logger.Sync() }()
			return save(c.App.Reader, c.String(flagOutput), logger)
		},
	}
}

func save(in io.Reader, path string, logger *zap.Logger) error {
	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	data, err := decode(raw)
	if err != nil {
		return fmt.Errorf("decode visualization: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	logger.Info("visualization saved", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

// decode принимает голую base64-строку или JSON-строку в кавычках
func decode(raw []byte) ([]byte, error) {
	text := strings.TrimSpace(string(raw))
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal([]byte(text), &s); err != nil {
			return nil, fmt.Errorf("parse json string: %w", err)
		}
		text = s
	}
	text = strings.TrimPrefix(text, "data:image/png;base64,")
	if text == "" {
		return nil, fmt.Errorf("empty input")
	}
	return base64.StdEncoding.DecodeString(text)
}
