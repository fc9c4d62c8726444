package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/phrazzld/paramstore/internal/service"
)

func runLoad(ctx context.Context, c *cli, args []string) error {
	var (
		configPath string
		file       string
		inline     string
		noUpdate   bool
	)
	fs := c.flagSet("load", &configPath)
	fs.StringVar(&file, "file", "", "JSON or YAML file holding a list of parameters")
	fs.StringVar(&inline, "json", "", "JSON list of parameters")
	fs.BoolVar(&noUpdate, "no-update", false, "leave existing parameters unchanged")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return usageError("load takes no positional arguments")
	}

	var records []service.Record
	switch {
	case file != "" && inline != "":
		return usageError("--file and --json cannot be used together")
	case file != "":
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		if records, err = service.DecodeRecords(f, service.FormatFromPath(file)); err != nil {
			return err
		}
	case inline != "":
		var err error
		if records, err = service.DecodeRecords(strings.NewReader(inline), service.FormatJSON); err != nil {
			return err
		}
	default:
		return usageError("load needs --file or --json")
	}

	app, err := newApplication(ctx, configPath, c.stderr)
	if err != nil {
		return err
	}
	defer app.close()

	count, err := app.service.Load(ctx, records, !noUpdate)
	if err != nil {
		return err
	}
	c.printf("Successfully loaded %d parameter(s)\n", count)
	return nil
}

func runDump(ctx context.Context, c *cli, args []string) error {
	var (
		configPath string
		indent     int
	)
	fs := c.flagSet("dump", &configPath)
	fs.IntVar(&indent, "indent", 4, "spaces per indentation level, 0 for compact output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageError("dump needs exactly one output file")
	}
	if indent < 0 {
		return usageError("--indent must not be negative")
	}
	path := fs.Arg(0)

	app, err := newApplication(ctx, configPath, c.stderr)
	if err != nil {
		return err
	}
	defer app.close()

	records, err := app.service.Dump(ctx)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := service.EncodeRecords(&buf, records, indent); err != nil {
		return err
	}
	// Dumps carry decrypted values.
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	c.printf("Successfully exported %d parameter(s) to %s\n", len(records), path)
	return nil
}
