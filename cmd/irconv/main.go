// Command irconv augments an audio file and its annotations by convolving it
// with one or more impulse responses.
//
// Usage:
//
//	irconv [flags] -in audio.wav -ir response.wav [-ir other.irlib#Hall ...]
//
// One output pair <base>_<index>.wav and <base>_<index>.json is written per
// impulse response. Annotation times are shifted by the response's median
// group delay so they stay aligned with the convolved audio.
//
// Defaults for -nfft, -rolloff and -method come from IRCONV_NFFT,
// IRCONV_ROLLOFF and IRCONV_METHOD, which may also be set in a .env file.
// TRACE_EXPORTER selects "stdout" or "otlp" tracing.
//
// Examples:
//
//	irconv -in take.wav -ann take.json -ir rooms.irlib#0,rooms.irlib#1 -out aug/
//	irconv -v -nfft 4096 -rolloff 30 -in take.wav -ir church.aiff
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/cwbudde/algo-augment/augment"
	"github.com/cwbudde/algo-augment/augment/annotation"
	"github.com/cwbudde/algo-augment/augment/audioio"
	"github.com/cwbudde/algo-augment/augment/irconv"
	"github.com/cwbudde/algo-augment/internal/trace"
	"github.com/cwbudde/algo-augment/measure/ir"
)

func main() {
	// A missing .env file is fine; explicit variables still apply.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// sourceList collects -ir values. Each value may hold a comma separated list.
type sourceList []string

func (s *sourceList) String() string { return strings.Join(*s, ",") }

func (s *sourceList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*s = append(*s, part)
		}
	}
	return nil
}

type options struct {
	input   string
	ann     string
	out     string
	sources sourceList
	bits    int
	cache   bool
	verbose bool
	logJSON bool
	cfg     irconv.Config
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	env, err := envDefaults()
	if err != nil {
		return options{}, err
	}

	var (
		o      options
		method string
	)

	fs := flag.NewFlagSet("irconv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.input, "in", "", "input audio file (wav, aiff)")
	fs.StringVar(&o.ann, "ann", "", "annotation JSON file to shift (optional)")
	fs.StringVar(&o.out, "out", ".", "output directory")
	fs.Var(&o.sources, "ir", "impulse response source; repeat or comma separate (file.irlib#name selects from a library)")
	fs.IntVar(&o.cfg.FFTSize, "nfft", env.FFTSize, "frequency bins for group delay estimation")
	fs.Float64Var(&o.cfg.Rolloff, "rolloff", env.Rolloff, "passband threshold below the peak in dB")
	fs.StringVar(&method, "method", env.Method.String(), "group delay method: derivative or phase")
	fs.IntVar(&o.bits, "bits", 16, "output bit depth (16 or 24)")
	fs.BoolVar(&o.cache, "cache", true, "load each impulse response once per sample rate")
	fs.BoolVar(&o.verbose, "v", false, "debug logging")
	fs.BoolVar(&o.logJSON, "log-json", false, "log as JSON")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: irconv [flags] -in audio.wav -ir response.wav [-ir ...]\n\n")
		fmt.Fprintf(stderr, "Convolves audio with impulse responses and shifts annotations by their group delay.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if o.input == "" {
		fs.Usage()
		return options{}, errors.New("-in is required")
	}

	if o.cfg.Method, err = ir.ParseMethod(method); err != nil {
		return options{}, err
	}
	o.cfg.IRSources = o.sources

	return o, nil
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	log := newLogger(stderr, o.verbose, o.logJSON)

	if err := trace.Initialize(ctx, trace.DefaultConfig("irconv")); err != nil {
		return err
	}
	defer func() {
		if err := trace.Shutdown(context.Background()); err != nil {
			log.WithError(err).Warn("trace shutdown")
		}
	}()

	var loader audioio.Loader = audioio.NewFileLoader()
	if o.cache {
		loader = audioio.NewCachedLoader(loader)
	}

	deformer, err := irconv.New(o.cfg, irconv.WithLoader(loader), irconv.WithLogger(log))
	if err != nil {
		return err
	}

	item, err := loadItem(ctx, o, loader)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(o.out, 0o755); err != nil {
		return err
	}

	base := strings.TrimSuffix(filepath.Base(o.input), filepath.Ext(o.input))
	i := 0
	for out, err := range augment.Transform(ctx, deformer, item, augment.WithTransformLogger(log)) {
		if err != nil {
			return err
		}

		for _, ann := range out.Annotations {
			if err := ann.Validate(augment.BoundaryTolerance); err != nil {
				log.WithFields(logrus.Fields{
					"namespace":   ann.Namespace,
					"source":      out.State.SourceID,
					"group_delay": out.State.GroupDelay,
				}).WithError(err).Warn("deformed annotation out of bounds")
			}
		}

		stem := filepath.Join(o.out, fmt.Sprintf("%s_%02d", base, i))
		if err := writeItem(stem, out, o.bits, o.ann != ""); err != nil {
			return err
		}

		log.WithFields(logrus.Fields{
			"output":      stem,
			"source":      out.State.SourceID,
			"group_delay": out.State.GroupDelay,
			"deformation": out.ID,
		}).Info("wrote deformation")
		i++
	}

	return nil
}

func loadItem(ctx context.Context, o options, loader audioio.Loader) (*augment.Item, error) {
	sig, err := loader.Load(ctx, o.input, 0)
	if err != nil {
		return nil, err
	}

	item := &augment.Item{Audio: augment.AudioContext{Samples: sig.Samples, SampleRate: sig.SampleRate}}
	if o.ann == "" {
		return item, nil
	}

	f, err := os.Open(o.ann)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if item.Annotations, err = annotation.ReadAll(f); err != nil {
		return nil, fmt.Errorf("%s: %w", o.ann, err)
	}

	for _, ann := range item.Annotations {
		if err := ann.Validate(augment.BoundaryTolerance); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", o.ann, ann.Namespace, err)
		}
	}

	return item, nil
}

func writeItem(stem string, it *augment.Item, bits int, withAnnotations bool) error {
	sig := audioio.Signal{Samples: it.Audio.Samples, SampleRate: it.Audio.SampleRate}
	if err := audioio.WriteWAV(stem+".wav", sig, bits); err != nil {
		return err
	}

	if !withAnnotations {
		return nil
	}

	f, err := os.Create(stem + ".json")
	if err != nil {
		return err
	}
	if err := annotation.Write(f, it.Annotations...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
