package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/smuggledetect/smuggledetect/pkg/detector"
	"github.com/smuggledetect/smuggledetect/pkg/scanlog"
)

func main() {
	url := flag.String("url", "", "target URL, e.g. https://example.com/")
	timeout := flag.Duration("timeout", 5*time.Second, "per-probe read timeout")
	exitFirst := flag.Bool("exit-first", false, "stop at the first vulnerable finding")
	flag.Parse()

	if *url == "" {
		fmt.Fprintln(os.Stderr, "usage: demo_scan -url https://target/")
		os.Exit(2)
	}

	log, err := scanlog.New(zapcore.InfoLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	defer log.Sync()

	opts := detector.ScanOptions{
		URL:       *url,
		Timeout:   *timeout,
		ExitFirst: *exitFirst,
	}

	result, err := detector.RunScan(context.Background(), opts, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scan failed: %v\n", err)
		os.Exit(2)
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
	os.Exit(int(result.ExitCode))
}
