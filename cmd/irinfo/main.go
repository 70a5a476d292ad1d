// Command irinfo prints acoustic properties of impulse responses.
//
// Usage:
//
//	irinfo [flags] source ...
//
// A source is an audio file (wav, aiff) or an entry of an IRLB library
// written as library.irlib#name or library.irlib#index.
//
// Examples:
//
//	irinfo hall.wav
//	irinfo -rate 16000 -rolloff 30 hall.wav rooms.irlib#Chapel
//	irinfo -method phase -nfft 4096 plate.aiff
//	irinfo -list rooms.irlib
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/cwbudde/algo-augment/augment/audioio"
	"github.com/cwbudde/algo-augment/measure/ir"
)

func main() {
	rate := flag.Float64("rate", 0, "analysis sample rate in Hz (0 keeps the native rate)")
	nfft := flag.Int("nfft", ir.DefaultFFTSize, "frequency bins for group delay estimation")
	rolloff := flag.Float64("rolloff", ir.DefaultRolloff, "passband threshold below the peak in dB")
	method := flag.String("method", ir.MethodDerivative.String(), "group delay method: derivative or phase")
	list := flag.Bool("list", false, "list the entries of IRLB libraries instead of analysing")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: irinfo [flags] source ...\n\n")
		fmt.Fprintf(os.Stderr, "Prints group delay and decay metrics of impulse responses.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  irinfo hall.wav\n")
		fmt.Fprintf(os.Stderr, "  irinfo -rate 16000 rooms.irlib#Chapel\n")
		fmt.Fprintf(os.Stderr, "  irinfo -list rooms.irlib\n")
	}
	flag.Parse()

	sources := flag.Args()
	if len(sources) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if *list {
		if err := printLibraries(os.Stdout, sources); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	m, err := ir.ParseMethod(*method)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	opts := []ir.Option{ir.WithFFTSize(*nfft), ir.WithRolloff(*rolloff), ir.WithMethod(m)}
	if failed := printAnalysis(context.Background(), os.Stdout, audioio.NewFileLoader(), sources, *rate, opts); failed > 0 {
		os.Exit(1)
	}
}

func printLibraries(w io.Writer, paths []string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Source\tRate\tChannels\tLength\n------\t----\t--------\t------\n"); err != nil {
		return err
	}

	for _, path := range paths {
		entries, err := audioio.ListIRLib(path)
		if err != nil {
			return err
		}
		for i, e := range entries {
			name := e.Name
			if name == "" {
				name = fmt.Sprint(i)
			}
			if _, err := fmt.Fprintf(tw, "%s#%s\t%g\t%d\t%d\n", path, name, e.SampleRate, e.Channels, e.Length); err != nil {
				return err
			}
		}
	}

	return tw.Flush()
}

// printAnalysis writes one table row per source and returns the number of
// sources that could not be analysed.
func printAnalysis(ctx context.Context, w io.Writer, loader audioio.Loader, sources []string, rate float64, opts []ir.Option) int {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Source\tRate\tLength\tGroup Delay [ms]\tPeak [ms]\tCentre Time [ms]\tEDT [s]\tRT60 [s]\n"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output header: %v\n", err)
		return len(sources)
	}
	if _, err := fmt.Fprintf(tw, "------\t----\t------\t----------------\t---------\t----------------\t-------\t--------\n"); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output header: %v\n", err)
		return len(sources)
	}

	failed := 0
	for _, src := range sources {
		src = strings.TrimSpace(src)

		sig, err := loader.Load(ctx, src, rate)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			failed++
			continue
		}

		m, err := ir.NewAnalyzer(sig.SampleRate, opts...).Analyze(sig.Samples)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "warning: %s: %v\n", src, err)
			failed++
			continue
		}

		if _, err := fmt.Fprintf(tw, "%s\t%g\t%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\n",
			src,
			sig.SampleRate,
			len(sig.Samples),
			1e3*m.GroupDelay,
			1e3*float64(m.PeakIndex)/sig.SampleRate,
			1e3*m.CenterTime,
			m.EDT,
			m.RT60,
		); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error: failed to write output row: %v\n", err)
			return len(sources)
		}
	}
	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}

	return failed
}
