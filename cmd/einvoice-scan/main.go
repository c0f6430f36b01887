package main

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/einvoice-tracker/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

// result is the output for one scanned file
type result struct {
	File  string                `json:"file"`
	Data  *scanning.InvoiceData `json:"data,omitempty"`
	Error string                `json:"error,omitempty"`
}

func main() {
	fs := ff.NewFlagSet("einvoice-scan")
	var (
		contentType = fs.StringLong("content-type", "", "Content type of the files (default: guessed from the extension)")
		payloadOnly = fs.BoolLong("payload", "Print only the payment QR payload of each file")
		logLevel    = fs.StringLong("log-level", "warn", "Log level: debug, info, warn or error")
		showVersion = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("EINVOICE"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	files := fs.GetArgs()
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs, "einvoice-scan [flags] FILE..."))
		os.Exit(2)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid log level %q\n", *logLevel)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	scanner := scanning.NewXMLScanner(logger)
	defer scanner.Close()

	failed := false
	results := make([]result, 0, len(files))
	for _, file := range files {
		r := scanFile(scanner, file, *contentType)
		if r.Error != "" {
			logger.Warn("Scan failed", "file", file, "error", r.Error)
			failed = true
		}
		results = append(results, r)
	}

	if *payloadOnly {
		for _, r := range results {
			if r.Data != nil {
				fmt.Printf("%s\n%s\n\n", r.File, r.Data.Payload)
			}
		}
	} else {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			logger.Error("Error encoding results", "error", err)
			os.Exit(1)
		}
	}

	if failed {
		os.Exit(1)
	}
}

// scanFile scans one file, guessing its content type when none is given
func scanFile(scanner scanning.Scanner, file, contentType string) result {
	data, err := os.ReadFile(file)
	if err != nil {
		return result{File: file, Error: err.Error()}
	}
	if contentType == "" {
		contentType = scanning.DetectContentType(file, data)
	}
	invoiceData, err := scanner.ScanInvoice(data, contentType)
	if err != nil {
		return result{File: file, Error: err.Error()}
	}
	return result{File: file, Data: invoiceData}
}
