// chroma_format.go defines the ChromaFormat enum.

package types

import (
	"fmt"
	"strings"
)

type ChromaFormat int

const (
	UndefinedChromaFormat ChromaFormat = iota
	ChromaFormatMonochrome
	ChromaFormat420
	ChromaFormat422
	ChromaFormat444
	EndOfChromaFormat
)

func (f ChromaFormat) String() string {
	switch f {
	case UndefinedChromaFormat:
		return "<undefined>"
	case ChromaFormatMonochrome:
		return "400"
	case ChromaFormat420:
		return "420"
	case ChromaFormat422:
		return "422"
	case ChromaFormat444:
		return "444"
	default:
		return fmt.Sprintf("<unexpected_%d>", int(f))
	}
}

func (f ChromaFormat) MarshalText() ([]byte, error) {
	if f <= UndefinedChromaFormat || f >= EndOfChromaFormat {
		return nil, fmt.Errorf("unexpected chroma format %d", int(f))
	}
	return []byte(f.String()), nil
}

func (f *ChromaFormat) UnmarshalText(b []byte) error {
	s := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(string(b))), "yuv")
	for c := UndefinedChromaFormat + 1; c < EndOfChromaFormat; c++ {
		if c.String() == s {
			*f = c
			return nil
		}
	}
	if s == "mono" || s == "monochrome" || s == "gray" {
		*f = ChromaFormatMonochrome
		return nil
	}
	return fmt.Errorf("unknown chroma format '%s'", string(b))
}
