package tiktoken

import (
	"github.com/pkoukk/tiktoken-go"
)

// Tokenizer counts tokens with the tiktoken BPE tables.
type Tokenizer struct {
	enc *tiktoken.Tiktoken
}

// New resolves an encoding by model name first, then by encoding name.
func New(name string) (*Tokenizer, error) {
	enc, err := tiktoken.EncodingForModel(name)
	if err != nil {
		enc, err = tiktoken.GetEncoding(name)
		if err != nil {
			return nil, err
		}
	}
	return &Tokenizer{enc: enc}, nil
}

// Encode converts text into token ids.
func (t *Tokenizer) Encode(text string) []int {
	return t.enc.Encode(text, nil, nil)
}

// CountTokens returns the number of tokens in text.
func (t *Tokenizer) CountTokens(text string) int {
	return len(t.Encode(text))
}
