package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Params is an index's persistent configuration (spec section 6). The
// distilled spec names params.db in the on-disk layout but leaves its
// encoding unspecified; nxsearch uses encoding/json, matching the
// teacher's own JSON-based config/fixture handling throughout
// weaviate/fetcher and weaviate/cmd/data-gen.
type Params struct {
	Filters []string `json:"filters"`
	Algo    string   `json:"algo"`
	Lang    string   `json:"lang"`
}

// DefaultParams returns the defaults named in spec section 6.
func DefaultParams() Params {
	return Params{
		Filters: []string{"normalizer", "stopwords", "stemmer"},
		Algo:    "BM25",
		Lang:    "en",
	}
}

const paramsFileName = "params.db"

func loadParams(dir string) (Params, error) {
	data, err := os.ReadFile(filepath.Join(dir, paramsFileName))
	if err != nil {
		return Params{}, fmt.Errorf("index: read %s: %w", paramsFileName, err)
	}
	var p Params
	if err := json.Unmarshal(data, &p); err != nil {
		return Params{}, fmt.Errorf("index: parse %s: %w", paramsFileName, err)
	}
	return p, nil
}

func saveParams(dir string, p Params) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("index: marshal params: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, paramsFileName), data, 0644); err != nil {
		return fmt.Errorf("index: write %s: %w", paramsFileName, err)
	}
	return nil
}
