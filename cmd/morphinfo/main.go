// Command morphinfo prints the morph engine's parameter registry,
// macro curve shapes, delay sync table and factory presets.
//
// Usage:
//
//	morphinfo [flags]
//
// Without flags it prints the 14-field parameter registry.
//
// Examples:
//
//	morphinfo
//	morphinfo -curves
//	morphinfo -sync -bpm 140
//	morphinfo -presets
//	morphinfo -dump 5
package main

import (
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/algo-morphfx/engine"
	"github.com/cwbudde/algo-morphfx/param"
	"github.com/cwbudde/algo-morphfx/preset"
)

func main() {
	curves := flag.Bool("curves", false, "print macro curve shapes")
	sync := flag.Bool("sync", false, "print the delay sync table")
	bpm := flag.Float64("bpm", 120, "tempo for the sync table times")
	presets := flag.Bool("presets", false, "list factory presets")
	dump := flag.Int("dump", -1, "write factory preset N to stdout as JSON")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: morphinfo [flags]\n\n")
		fmt.Fprintf(os.Stderr, "Prints the morph engine's registries and factory content.\n")
		fmt.Fprintf(os.Stderr, "Without flags, prints the parameter registry.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  morphinfo -curves\n")
		fmt.Fprintf(os.Stderr, "  morphinfo -sync -bpm 140\n")
		fmt.Fprintf(os.Stderr, "  morphinfo -dump 5 > dub-station.json\n")
	}
	flag.Parse()

	switch {
	case *curves:
		printCurves()
	case *sync:
		printSyncTable(*bpm)
	case *presets:
		printPresets()
	case *dump >= 0:
		if err := dumpPreset(*dump); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	default:
		printFields()
	}
}

func printFields() {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Index\tField\tMin\tMax\tDefault\tDiscrete\tSmoothing [ms]\n")
	fmt.Fprintf(tw, "-----\t-----\t---\t---\t-------\t--------\t--------------\n")

	for i, f := range param.Fields {
		fmt.Fprintf(tw, "%d\t%s\t%g\t%g\t%g\t%v\t%g\n",
			i, f.ID, f.Min, f.Max, f.Default, f.Discrete, f.Smooth.Seconds()*1000)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func printCurves() {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Curve")
	for x := 0.0; x <= 1.0; x += 0.25 {
		fmt.Fprintf(tw, "\tf(%.2f)", x)
	}
	fmt.Fprintln(tw)

	for _, c := range param.Curves() {
		fmt.Fprintf(tw, "%s", c)
		for x := 0.0; x <= 1.0; x += 0.25 {
			fmt.Fprintf(tw, "\t%.4f", c.Apply(x))
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func printSyncTable(bpm float64) {
	labels := []string{"1/32", "1/16", "1/8", "1/4", "1/2", "1 bar", "1/8 dotted", "1/4 dotted"}
	beats := []float64{0.125, 0.25, 0.5, 1, 2, 4, 0.75, 1.5}

	if bpm <= 20 {
		bpm = 120
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Index\tNote\tBeats\tTime @ %g BPM [ms]\n", bpm)
	for i := range labels {
		fmt.Fprintf(tw, "%d\t%s\t%g\t%.1f\n", i, labels[i], beats[i], beats[i]*60000/bpm)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func printPresets() {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Index\tName\tMacro targets\n")
	for i, p := range preset.FactoryPresets() {
		total := 0
		for _, targets := range p.Macros {
			total += len(targets)
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\n", i, p.Name, total)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to flush output: %v\n", err)
	}
}

func dumpPreset(index int) error {
	if index >= preset.NumFactory {
		return fmt.Errorf("preset index out of range: %d (have %d)", index, preset.NumFactory)
	}

	e, err := engine.New(48000, 512)
	if err != nil {
		return err
	}
	preset.ApplyFactory(index, e)

	return preset.Save(os.Stdout, preset.Capture(e))
}
