package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-augment/augment/irconv"
	"github.com/cwbudde/algo-augment/measure/ir"
)

// envDefaults returns the analysis defaults with IRCONV_* overrides applied.
func envDefaults() (irconv.Config, error) {
	cfg := irconv.DefaultConfig()

	if v := os.Getenv("IRCONV_NFFT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("IRCONV_NFFT: %w", err)
		}
		cfg.FFTSize = n
	}

	if v := os.Getenv("IRCONV_ROLLOFF"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("IRCONV_ROLLOFF: %w", err)
		}
		cfg.Rolloff = r
	}

	if v := os.Getenv("IRCONV_METHOD"); v != "" {
		m, err := ir.ParseMethod(v)
		if err != nil {
			return cfg, fmt.Errorf("IRCONV_METHOD: %w", err)
		}
		cfg.Method = m
	}

	return cfg, nil
}

func newLogger(w io.Writer, verbose, asJSON bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)

	if asJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	return log
}
