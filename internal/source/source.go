// Package source reads CSL source files, detecting their encoding from a
// byte-order mark and decoding to UTF-8 text, and raises ReadError for I/O
// failures (the first member of the compiler's error taxonomy).
//
// Grounded on CWBudde-go-dws/internal/interp/encoding.go, whose
// detectAndDecodeFile/decodeUTF16 pair is adapted here almost verbatim; the
// original implementation's util/ioutil.go StrReader motivates exposing the
// result as a plain string rather than an io.Reader, since the lexer reads
// the whole buffer into memory regardless.
package source

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/flipboards/cslc/internal/errors"
	"github.com/flipboards/cslc/pkg/token"
)

// ReadFile reads path and returns its contents decoded to UTF-8, stripping
// any byte-order mark. It supports UTF-8 (with or without BOM), UTF-16LE
// and UTF-16BE. Files without a BOM are read as UTF-8 when they are valid
// UTF-8, and otherwise byte by byte as Latin-1.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.New(errors.ReadErr, token.Position{}, fmt.Sprintf("cannot read %s: %s", path, err), "", path)
	}
	text, err := Decode(data)
	if err != nil {
		return "", errors.New(errors.ReadErr, token.Position{}, err.Error(), "", path)
	}
	return text, nil
}

// Decode detects data's encoding from a BOM and returns it decoded to a
// UTF-8 string with the BOM removed.
func Decode(data []byte) (string, error) {
	switch {
	case len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF:
		return string(data[3:]), nil
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE:
		return decodeUTF16(data, unicode.LittleEndian)
	case len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF:
		return decodeUTF16(data, unicode.BigEndian)
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes), nil
}

func decodeUTF16(data []byte, endianness unicode.Endianness) (string, error) {
	decoder := unicode.UTF16(endianness, unicode.UseBOM).NewDecoder()

	utf8Data, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return "", fmt.Errorf("decoding UTF-16 source: %w", err)
	}

	if len(utf8Data) >= 3 && utf8Data[0] == 0xEF && utf8Data[1] == 0xBB && utf8Data[2] == 0xBF {
		utf8Data = utf8Data[3:]
	}

	result := bytes.TrimPrefix(utf8Data, []byte("﻿"))
	return string(result), nil
}
