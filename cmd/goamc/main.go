package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/plan-systems/klog"

	"github.com/amc-systems/goamc/goamc"
	"github.com/amc-systems/goamc/libamc"
	"github.com/amc-systems/goamc/libamc/catalog"
)

func main() {

	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "2")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	output := flag.String("o", "", "write reduced equations to this file instead of stdout")
	convention := flag.String("convention", "wigner", "reduced matrix element convention: wigner or sakurai")
	collect9 := flag.Bool("collect-ninejs", false, "fuse products of three 6j-symbols into 9j-symbols")
	collect12 := flag.Bool("collect-twelvejs", false, "additionally fuse one 9j and two 6j-symbols into 12j-symbols")
	permute := flag.Bool("permute", false, "search subscript permutations for a reducible coupling order")
	workers := flag.Int("workers", runtime.NumCPU(), "number of terms reduced concurrently")
	maxIter := flag.Int("max-iter", goamc.DefaultMaxIter, "reduction iteration cap")
	catalogPath := flag.String("catalog", "", "reuse reductions from this catalog db")

	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: goamc [flags] <input.amc>\n")
		flag.PrintDefaults()
		os.Exit(2)
	}

	err := run(flag.Arg(0), *output, goamc.ReduceOpts{
		Permute:         *permute,
		CollectNineJs:   *collect9,
		CollectTwelveJs: *collect12,
		MaxIter:         *maxIter,
		Workers:         *workers,
	}, *convention, *catalogPath)

	klog.Flush()
	if err != nil {
		fmt.Fprintf(os.Stderr, "goamc: %v\n", err)
		os.Exit(1)
	}
}

func run(input, output string, opts goamc.ReduceOpts, convention, catalogPath string) error {
	var err error
	opts.Convention, err = goamc.ParseConvention(convention)
	if err != nil {
		return err
	}

	src, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	equations, err := libamc.NewParser().Parse(input, string(src))
	if err != nil {
		return err
	}
	klog.Infof("parsed %d equation(s) from %s", len(equations), input)

	var cat *catalog.Catalog
	if catalogPath != "" {
		cat, err = catalog.OpenCatalog(catalog.Opts{DbPathName: catalogPath})
		if err != nil {
			return err
		}
		defer cat.Close()
	}

	out := os.Stdout
	if output != "" {
		out, err = os.Create(output)
		if err != nil {
			return err
		}
		defer out.Close()
	}

	for k, eq := range equations {
		if cat != nil {
			if hit, found, err := cat.Get(eq, opts); err != nil {
				return err
			} else if found {
				klog.Infof("equation %d: catalog hit", k)
				fmt.Fprintln(out, hit)
				continue
			}
		}

		reduced, err := libamc.ReduceEquation(eq, opts)
		if errors.Is(err, goamc.ErrNotReducible) {
			klog.Warningf("equation %d (%s): %v -- skipped", k, eq.LHS, err)
			continue
		}
		if err != nil {
			return fmt.Errorf("equation %d (%s): %w", k, eq.LHS, err)
		}
		klog.Infof("equation %d: reduced %s", k, eq.LHS)

		if cat != nil {
			if err := cat.Put(eq, reduced, opts); err != nil {
				return err
			}
		}
		fmt.Fprintln(out, reduced)
	}

	return nil
}
