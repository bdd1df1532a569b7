// Command nxsinspect dumps a live nxsearch index to a diagnostic snapshot
// and prints a summary, the same role the teacher's cmd/stats and
// cmd/query-index tools played for its own segment format.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"nxsearch/diag"
	"nxsearch/index"
)

func main() {
	baseDir := flag.String("base", "", "base directory (contains data/<name>)")
	name := flag.String("index", "", "index name to inspect")
	out := flag.String("out", "", "optional path to write the binary snapshot to")
	flag.Parse()

	if *baseDir == "" || *name == "" {
		log.Fatalf("usage: nxsinspect -base <dir> -index <name> [-out <file>]")
	}

	idx, err := index.Open(filepath.Join(*baseDir, "data"), *name)
	if err != nil {
		log.Fatalf("open index %q: %v", *name, err)
	}
	defer idx.Close()

	snap, err := diag.BuildSnapshot(idx)
	if err != nil {
		log.Fatalf("build snapshot: %v", err)
	}

	snap.PrintInfo(os.Stdout)

	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("create %s: %v", *out, err)
		}
		defer f.Close()
		if err := snap.Serialize(f); err != nil {
			log.Fatalf("write snapshot: %v", err)
		}
		log.Printf("wrote snapshot to %s", *out)
	}
}
