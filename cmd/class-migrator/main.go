// Class-migrator rewrites the class files and resources of an exploded
// archive so that they refer to a migrated namespace.
//
// Usage:
//
//	class-migrator -config FILE [-invert] [-workers N] [-n] IN OUT
//	class-migrator -config FILE [-invert] [-workers N] -show
//
// Every file under IN is transformed according to the mappings in the
// configuration file and written to the same relative path, or to its
// migrated path, under OUT. Helper classes synthesized for redirected
// reflective calls are written next to the classes that use them. With -n
// the changes are reported and nothing is written. With -show the effective
// configuration, defaults and flags applied, is printed as YAML.
package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"

	"class-migrator/internal/mapping"
	"class-migrator/internal/transform"
)

var (
	configFile = flag.String("config", "", "mapping configuration `file`")
	invert     = flag.Bool("invert", false, "apply the mappings in the to -> from direction")
	workers    = flag.Int("workers", 0, "number of concurrent transforms (default from config)")
	dryRun     = flag.Bool("n", false, "report changes without writing")
	show       = flag.Bool("show", false, "print the effective configuration and exit")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: class-migrator -config file [-invert] [-workers n] [-n] in out\n")
	fmt.Fprintf(os.Stderr, "       class-migrator -config file [-invert] [-workers n] -show\n")
	os.Exit(2)
}

func main() {
	log.SetPrefix("class-migrator: ")
	log.SetFlags(0)

	flag.Usage = usage
	flag.Parse()

	if *configFile == "" || (*show && flag.NArg() != 0) || (!*show && flag.NArg() != 2) {
		usage()
	}

	cfg, err := mapping.LoadFile(*configFile)
	if err != nil {
		log.Fatal(err)
	}

	if *invert {
		cfg.Invert = true
	}

	if *workers > 0 {
		cfg.Workers = *workers
	}

	if *show {
		data, err := mapping.Marshal(cfg)
		if err != nil {
			log.Fatal(err)
		}

		os.Stdout.Write(data)

		return
	}

	in, out := flag.Arg(0), flag.Arg(1)

	failed, err := run(context.Background(), cfg, in, out)
	if err != nil {
		log.Fatal(err)
	}

	if failed > 0 {
		log.Printf("%d resources failed", failed)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *mapping.Config, in, out string) (int, error) {
	table, err := cfg.Table()
	if err != nil {
		return 0, err
	}

	session, err := transform.NewSession(table, transform.OptionsFromConfig(cfg))
	if err != nil {
		return 0, err
	}

	resources, err := readTree(in)
	if err != nil {
		return 0, err
	}

	results, err := session.TransformAll(ctx, resources)
	if err != nil {
		return 0, err
	}

	failed := 0

	for i, r := range results {
		outputs := r.Outputs

		switch {
		case r.Err != nil:
			log.Print(r.Err)
			failed++

			outputs = []transform.Resource{resources[i]}
		case r.Changed():
			if o := r.Outputs[0]; o.Name == r.Name {
				log.Printf("%s: rewritten", r.Name)
			} else {
				log.Printf("%s: written as %s", r.Name, o.Name)
			}

			for _, o := range r.Outputs[1:] {
				log.Printf("synthesized %s", o.Name)
			}
		default:
			outputs = []transform.Resource{resources[i]}
		}

		if *dryRun {
			continue
		}

		for _, o := range outputs {
			if err := writeResource(out, o); err != nil {
				return failed, err
			}
		}
	}

	warnings := session.Warnings()
	for _, w := range warnings.Warnings {
		log.Printf("warning: %s", w)
	}

	return failed, nil
}

// readTree loads every regular file under root, named by its slash
// separated path relative to root.
func readTree(root string) ([]transform.Resource, error) {
	var resources []transform.Resource

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		resources = append(resources, transform.Resource{Name: filepath.ToSlash(rel), Data: data})

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(resources, func(i, j int) bool {
		return resources[i].Name < resources[j].Name
	})

	return resources, nil
}

func writeResource(root string, r transform.Resource) error {
	path := filepath.Join(root, filepath.FromSlash(r.Name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, r.Data, 0o644)
}
