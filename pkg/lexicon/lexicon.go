// Package lexicon loads the word lists consulted by the sentence breaker.
// Each list is a newline-delimited file named after its list, for example
// non_final_abbrevs.txt.
package lexicon

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/japaniel/sentbreak/pkg/sentbreak"
	"github.com/japaniel/sentbreak/pkg/wordset"
)

//go:embed lists/*.txt
var defaultLists embed.FS

// FileName returns the file name a list is stored under.
func FileName(list string) string { return list + ".txt" }

// caseSensitive reports how a list compares words. Only the rarely
// capitalized list keeps case; its all-caps variants are derived.
func caseSensitive(list string) bool {
	return list == sentbreak.ListRarelyCapitalizedWords
}

func buildOptions(list string, logger *zap.Logger) []wordset.Option {
	opts := []wordset.Option{wordset.WithName(list), wordset.WithLogger(logger)}
	if list == sentbreak.ListNonFinalAbbrevs || list == sentbreak.ListNoSplitAbbrevs {
		opts = append(opts, wordset.SkipComments())
	}
	return opts
}

// Defaults returns the lists bundled with the binary.
func Defaults(logger *zap.Logger) (sentbreak.WordLists, error) {
	sub, err := fs.Sub(defaultLists, "lists")
	if err != nil {
		return sentbreak.WordLists{}, err
	}
	return LoadFS(sub, logger)
}

// LoadDir loads every list file found in dir.
func LoadDir(dir string, logger *zap.Logger) (sentbreak.WordLists, error) {
	return LoadFS(os.DirFS(dir), logger)
}

// LoadFS loads every list file present at the root of fsys. Missing files
// leave their list unset.
func LoadFS(fsys fs.FS, logger *zap.Logger) (sentbreak.WordLists, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var lists sentbreak.WordLists
	for _, name := range sentbreak.ListNames() {
		f, err := fsys.Open(FileName(name))
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("Word list not present", zap.String("list", name))
			continue
		}
		if err != nil {
			return lists, fmt.Errorf("open word list %s: %w", name, err)
		}
		ws, err := wordset.Read(f, caseSensitive(name), buildOptions(name, logger)...)
		f.Close()
		if err != nil {
			return lists, fmt.Errorf("read word list %s: %w", name, err)
		}
		lists.Set(name, ws)
		logger.Debug("Loaded word list", zap.String("list", name), zap.Int("words", ws.Len()))
	}
	return lists, nil
}

// Override replaces lists in base with the files named in paths, keyed by
// list name. Empty paths are ignored.
func Override(base sentbreak.WordLists, paths map[string]string, logger *zap.Logger) (sentbreak.WordLists, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	for name, path := range paths {
		if path == "" {
			continue
		}
		f, err := os.Open(path)
		if err != nil {
			return base, fmt.Errorf("open word list %s: %w", name, err)
		}
		ws, err := wordset.Read(f, caseSensitive(name), buildOptions(name, logger)...)
		f.Close()
		if err != nil {
			return base, fmt.Errorf("read word list %s: %w", name, err)
		}
		if !base.Set(name, ws) {
			return base, fmt.Errorf("unknown word list %q", name)
		}
		logger.Info("Loaded word list override", zap.String("list", name), zap.String("path", path))
	}
	return base, nil
}
