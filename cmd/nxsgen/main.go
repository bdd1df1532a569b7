// Command nxsgen generates a synthetic corpus and adds it to a live
// nxsearch index, adapted from the teacher's cmd/data-gen and cmd/datagen
// (which sampled a fixed vocabulary into a standalone JSON segment file);
// here the same sampling approach targets a real index directly through
// add(), useful for exercising the worked examples from spec section 8 at
// scale.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"path/filepath"
	"strings"

	"nxsearch/index"
)

var vocabulary = []string{
	"jedi", "force", "skywalker", "sith", "lightsaber", "empire", "rebellion", "droid",
	"blaster", "starship", "yoda", "clone", "trooper", "battle", "padawan", "hologram",
	"bounty", "hunter", "coruscant", "tatooine", "deathstar", "vader", "han", "chewbacca",
	"leia", "luke", "anakin", "grievous", "obiwan", "quigon", "naboo", "geonosis",
	"kamino", "mustafar", "dagobah", "endor", "hoth", "alderaan", "kashyyyk", "lando",
}

func generateDoc(rng *rand.Rand, minWords, maxWords int) string {
	n := minWords + rng.Intn(maxWords-minWords+1)
	words := make([]string, n)
	for i := range words {
		words[i] = vocabulary[rng.Intn(len(vocabulary))]
	}
	return strings.Join(words, " ")
}

func main() {
	baseDir := flag.String("base", "", "base directory (contains data/<name>)")
	name := flag.String("index", "", "index name to populate")
	numDocs := flag.Int("docs", 1000, "number of synthetic documents to add")
	minWords := flag.Int("min-words", 5, "minimum words per document")
	maxWords := flag.Int("max-words", 40, "maximum words per document")
	seed := flag.Int64("seed", 1, "PRNG seed")
	create := flag.Bool("create", false, "create the index if it does not already exist")
	flag.Parse()

	if *baseDir == "" || *name == "" {
		log.Fatalf("usage: nxsgen -base <dir> -index <name> [-docs N] [-create]")
	}

	dataDir := filepath.Join(*baseDir, "data")
	var idx *index.Index
	var err error
	if *create {
		idx, err = index.Create(dataDir, *name, index.DefaultParams())
	} else {
		idx, err = index.Open(dataDir, *name)
	}
	if err != nil {
		log.Fatalf("open/create index %q: %v", *name, err)
	}
	defer idx.Close()

	rng := rand.New(rand.NewSource(*seed))
	for docID := uint64(1); docID <= uint64(*numDocs); docID++ {
		text := generateDoc(rng, *minWords, *maxWords)
		if err := idx.Add(docID, []byte(text)); err != nil {
			log.Fatalf("add doc %d: %v", docID, err)
		}
	}

	fmt.Printf("added %d documents to %q (%d unique terms, %d tokens)\n",
		*numDocs, *name, idx.Terms.Dir.Len(), idx.TokenCount())
}
