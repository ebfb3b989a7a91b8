// Package universe generates and loads the instrument-list CSV files that
// define which tickers a backtest runs over.
package universe

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"breakout20/internal/logger"
)

// Entry is one instrument in a list file.
type Entry struct {
	Symbol string
	Name   string
}

// BuiltinLists maps list file names to their bundled contents: a cut of the
// Taiwan 50 constituents and a cut of the mid-cap 100. Real deployments
// regenerate these from exchange data; the bundled lists keep a fresh
// checkout runnable.
func BuiltinLists() map[string][]Entry {
	return map[string][]Entry{
		"tw50.csv": {
			{"2330", "TSMC"},
			{"2454", "MediaTek"},
			{"2317", "Hon Hai"},
			{"2308", "Delta Electronics"},
			{"2382", "Quanta"},
			{"2303", "UMC"},
			{"2412", "Chunghwa Telecom"},
			{"2881", "Fubon Financial"},
			{"2882", "Cathay Financial"},
			{"2886", "Mega Financial"},
			{"2891", "CTBC Financial"},
			{"1301", "Formosa Plastics"},
			{"1303", "Nan Ya Plastics"},
			{"2002", "China Steel"},
			{"3008", "Largan Precision"},
			{"2357", "ASUS"},
			{"2603", "Evergreen Marine"},
			{"3711", "ASE Technology"},
			{"1216", "Uni-President"},
			{"2207", "Hotai Motor"},
		},
		"tw100.csv": {
			{"2327", "Yageo"},
			{"2379", "Realtek"},
			{"3034", "Novatek"},
			{"2409", "AUO"},
			{"3231", "Wistron"},
			{"2324", "Compal"},
			{"2356", "Inventec"},
			{"2609", "Yang Ming Marine"},
			{"2615", "Wan Hai Lines"},
			{"1102", "Asia Cement"},
			{"9910", "Feng Tay"},
			{"2912", "President Chain Store"},
			{"1605", "Walsin Lihwa"},
			{"2385", "Chicony"},
			{"3017", "Asia Vital Components"},
		},
	}
}

// Generate writes every builtin list into dir, creating it if needed.
func Generate(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create list dir: %w", err)
	}
	for name, entries := range BuiltinLists() {
		path := filepath.Join(dir, name)
		if err := writeList(path, entries); err != nil {
			return err
		}
		logger.L().Info("generated instrument list", "path", path, "symbols", len(entries))
	}
	return nil
}

func writeList(path string, entries []Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create list file: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if err := cw.Write([]string{"symbol", "name"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Symbol, e.Name}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// LoadSymbols reads the symbol column of every list file, deduplicating
// across files. Duplicates are logged, not errors: the mid-cap list may
// legitimately overlap the large-cap one after index rebalancing.
func LoadSymbols(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var symbols []string

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open list file: %w", err)
		}
		entries, err := readList(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, e := range entries {
			if seen[e.Symbol] {
				logger.L().Debug("duplicate symbol across lists", "symbol", e.Symbol, "file", path)
				continue
			}
			seen[e.Symbol] = true
			symbols = append(symbols, e.Symbol)
		}
	}
	return symbols, nil
}

func readList(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	var entries []Entry
	for i, record := range records {
		if i == 0 && len(record) > 0 && record[0] == "symbol" {
			continue // header
		}
		if len(record) == 0 || record[0] == "" {
			continue
		}
		e := Entry{Symbol: record[0]}
		if len(record) > 1 {
			e.Name = record[1]
		}
		entries = append(entries, e)
	}
	return entries, nil
}
