package wordset

import (
	"bufio"
	"errors"
	"io"
	"slices"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxWords is the capacity of a WordSet. Entries beyond it are dropped.
const MaxWords = 1000

// ErrCapacityExceeded is logged (not returned) when a word list holds more
// than MaxWords distinct entries.
var ErrCapacityExceeded = errors.New("word set capacity exceeded")

// WordSet is an immutable membership set of words kept as a sorted slice.
// It is safe for concurrent reads.
type WordSet struct {
	words         []string
	caseSensitive bool
	dropped       int
}

type buildOptions struct {
	logger       *zap.Logger
	skipComments bool
	name         string
}

// Option configures Build and Read.
type Option func(*buildOptions)

// WithLogger sets the logger used for capacity warnings.
func WithLogger(l *zap.Logger) Option {
	return func(o *buildOptions) { o.logger = l }
}

// WithName labels the set in log output.
func WithName(name string) Option {
	return func(o *buildOptions) { o.name = name }
}

// SkipComments ignores lines starting with '#'.
func SkipComments() Option {
	return func(o *buildOptions) { o.skipComments = true }
}

// Build creates a WordSet from lines. Trailing carriage returns are stripped
// and empty lines ignored. When caseSensitive is false every entry is
// lowercased before insertion and Contains lowercases its argument.
func Build(lines []string, caseSensitive bool, opts ...Option) *WordSet {
	o := buildOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	ws := &WordSet{
		words:         make([]string, 0, min(len(lines), MaxWords)),
		caseSensitive: caseSensitive,
	}
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		if o.skipComments && strings.HasPrefix(line, "#") {
			continue
		}
		if !caseSensitive {
			line = lower(line)
		}
		ws.insert(line)
	}
	if ws.dropped > 0 {
		o.logger.Warn("Word list exceeds capacity, dropping entries",
			zap.String("list", o.name),
			zap.Int("capacity", MaxWords),
			zap.Int("dropped", ws.dropped),
			zap.Error(ErrCapacityExceeded))
	}
	return ws
}

// Read builds a WordSet from a newline-delimited word list.
func Read(r io.Reader, caseSensitive bool, opts ...Option) (*WordSet, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return Build(lines, caseSensitive, opts...), nil
}

// insert keeps words sorted; duplicates are ignored.
func (ws *WordSet) insert(word string) {
	i := sort.SearchStrings(ws.words, word)
	if i < len(ws.words) && ws.words[i] == word {
		return
	}
	if len(ws.words) >= MaxWords {
		ws.dropped++
		return
	}
	ws.words = slices.Insert(ws.words, i, word)
}

// Contains reports whether word is in the set. A nil set contains nothing.
func (ws *WordSet) Contains(word string) bool {
	if ws == nil || word == "" {
		return false
	}
	if !ws.caseSensitive {
		word = lower(word)
	}
	i := sort.SearchStrings(ws.words, word)
	return i < len(ws.words) && ws.words[i] == word
}

// Len returns the number of entries.
func (ws *WordSet) Len() int {
	if ws == nil {
		return 0
	}
	return len(ws.words)
}

// Dropped returns how many entries were discarded for exceeding MaxWords.
func (ws *WordSet) Dropped() int {
	if ws == nil {
		return 0
	}
	return ws.dropped
}

// Words returns a copy of the sorted entries.
func (ws *WordSet) Words() []string {
	if ws == nil {
		return nil
	}
	return slices.Clone(ws.words)
}

// CaseSensitive reports how the set normalizes lookups.
func (ws *WordSet) CaseSensitive() bool {
	return ws != nil && ws.caseSensitive
}

func lower(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			// cases.Caser is stateful, so one per call.
			return cases.Lower(language.Und).String(s)
		}
	}
	return strings.ToLower(s)
}
