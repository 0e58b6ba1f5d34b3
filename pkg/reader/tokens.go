package reader

import (
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// KagomeCounter counts Japanese morphemes with the IPA dictionary. It
// satisfies sentbreak.TokenCounter and is safe for concurrent use.
type KagomeCounter struct {
	t *tokenizer.Tokenizer
}

// NewKagomeCounter loads the tokenizer.
func NewKagomeCounter() (*KagomeCounter, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &KagomeCounter{t: t}, nil
}

// Surfaces returns the non-blank token surfaces of text.
func (k *KagomeCounter) Surfaces(text string) []string {
	var out []string
	for _, token := range k.t.Tokenize(text) {
		if token.Class == tokenizer.DUMMY {
			continue
		}
		if strings.TrimSpace(token.Surface) == "" {
			continue
		}
		out = append(out, token.Surface)
	}
	return out
}

// CountTokens returns the number of non-blank tokens in text.
func (k *KagomeCounter) CountTokens(text string) int {
	return len(k.Surfaces(text))
}
