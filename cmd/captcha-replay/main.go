// Replays scripted input against a challenge and prints the solution.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/labstack/gommon/log"

	"github.com/kyiku/tile-captcha/internal/config"
	"github.com/kyiku/tile-captcha/internal/script"
)

func main() {
	quiet := flag.Bool("q", false, "only report failures")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-q] script.yaml...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger := log.New("captcha-replay")
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(cfg.Level())

	runner := script.NewRunner(logger)
	failed := 0
	for _, path := range flag.Args() {
		s, err := script.Load(path)
		if err != nil {
			logger.Errorf("%s: %v", path, err)
			failed++
			continue
		}

		res, err := runner.Run(s)
		if err != nil {
			logger.Errorf("%s: %v", path, err)
			failed++
			continue
		}

		data, err := json.Marshal(res.Solution)
		if err != nil {
			logger.Errorf("%s: %v", path, err)
			failed++
			continue
		}

		status := "ok"
		switch {
		case res.Expected == nil:
			status = "done"
		case !res.Passed():
			status = "FAIL: " + res.VerifyErr.Error()
			failed++
		}
		if !*quiet || !res.Passed() {
			fmt.Printf("%s\t%s\t%s\n", path, data, status)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}
