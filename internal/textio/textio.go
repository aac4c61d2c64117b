// Package textio reads and writes the text files of a sample tree. Files are
// decoded by trying an ordered list of codecs; the codec that succeeded is
// returned so the file can be written back in the same encoding.
package textio

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// ErrUndecodable is returned when no codec in the chain could decode a file
var ErrUndecodable = errors.New("no codec could decode file")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Codec decodes and encodes file content
type Codec struct {
	Name   string
	decode func([]byte) (string, error)
	encode func(string) ([]byte, error)
}

var (
	// UTF8 is plain UTF-8 without a byte order mark
	UTF8 = Codec{Name: "utf-8", decode: decodeUTF8, encode: func(s string) ([]byte, error) { return []byte(s), nil }}

	// UTF8BOM is UTF-8 with a leading byte order mark, common in Visual Studio files
	UTF8BOM = Codec{Name: "utf-8-bom", decode: decodeUTF8BOM, encode: func(s string) ([]byte, error) {
		return append(append([]byte{}, utf8BOM...), s...), nil
	}}

	// UTF16 honours a byte order mark and assumes little-endian without one
	UTF16 = Codec{Name: "utf-16", decode: decodeUTF16, encode: encodeUTF16}
)

// DefaultChain is the order codecs are tried in
var DefaultChain = []Codec{UTF8BOM, UTF8, UTF16}

// Decode tries each codec in chain and returns the first successful result
func Decode(data []byte, chain []Codec) (string, Codec, error) {
	var errs []error
	for _, codec := range chain {
		text, err := codec.decode(data)
		if err == nil {
			return text, codec, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", codec.Name, err))
	}
	return "", Codec{}, fmt.Errorf("%w: %w", ErrUndecodable, errors.Join(errs...))
}

// ReadText reads path with the default codec chain
func ReadText(path string) (string, Codec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", Codec{}, err
	}
	text, codec, err := Decode(data, DefaultChain)
	if err != nil {
		return "", Codec{}, fmt.Errorf("%s: %w", path, err)
	}
	return text, codec, nil
}

// WriteText writes content to path using codec. A zero Codec means UTF-8.
func WriteText(path, content string, codec Codec) error {
	if codec.encode == nil {
		codec = UTF8
	}
	data, err := codec.encode(content)
	if err != nil {
		return fmt.Errorf("encoding %s as %s: %w", path, codec.Name, err)
	}
	return os.WriteFile(path, data, 0644)
}

func decodeUTF8(data []byte) (string, error) {
	if bytes.HasPrefix(data, utf8BOM) {
		return "", errors.New("unexpected byte order mark")
	}
	if !utf8.Valid(data) {
		return "", errors.New("invalid utf-8 sequence")
	}
	return string(data), nil
}

func decodeUTF8BOM(data []byte) (string, error) {
	if !bytes.HasPrefix(data, utf8BOM) {
		return "", errors.New("no byte order mark")
	}
	rest := data[len(utf8BOM):]
	if !utf8.Valid(rest) {
		return "", errors.New("invalid utf-8 sequence")
	}
	return string(rest), nil
}

func decodeUTF16(data []byte) (string, error) {
	if len(data)%2 != 0 {
		return "", errors.New("odd byte count")
	}
	decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	out, err := decoder.Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func encodeUTF16(s string) ([]byte, error) {
	encoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	return encoder.Bytes([]byte(s))
}
