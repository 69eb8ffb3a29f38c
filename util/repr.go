package util

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Digits of hex strings.
var hexDigits = "0123456789abcdef"

// ErrBadQuote is returned by Unquote, if the input is not enclosed in matching quotes.
var ErrBadQuote = errors.New("string must be enclosed in matching quotes")

// Repr returns a Python-style representation of a string.
// Single quotes are used, unless the string contains a single quote and no double quote.
func Repr(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)

	var quote byte
	if strings.IndexByte(s, '\'') < 0 || strings.IndexByte(s, '"') >= 0 {
		quote = '\''
	} else {
		quote = '"'
	}

	b.WriteByte(quote)

	var ch rune
	for size := 0; len(s) > 0; s = s[size:] {
		ch, size = utf8.DecodeRuneInString(s)

		// Invalid bytes are written as '\xhh'
		if ch == utf8.RuneError && size == 1 {
			b.WriteString(`\x`)
			b.WriteByte(hexDigits[(s[0]>>4)&0xf])
			b.WriteByte(hexDigits[s[0]&0xf])
			continue
		}

		// Escape quotes and backslashes
		if ch == rune(quote) || ch == '\\' {
			b.WriteByte('\\')
			b.WriteByte(byte(ch))
			continue
		}

		switch {
		case ch == '\t':
			b.WriteString(`\t`)
		case ch == '\n':
			b.WriteString(`\n`)
		case ch == '\r':
			b.WriteString(`\r`)
		case ch < ' ' || ch == unicode.MaxASCII: // Map non-printable US ASCII to '\xhh'
			b.WriteString(`\x`)
			b.WriteByte(hexDigits[(ch>>4)&0xf])
			b.WriteByte(hexDigits[ch&0xf])
		case !unicode.IsPrint(ch):
			hexEscape(&b, ch)
		default:
			b.WriteRune(ch)
		}
	}

	b.WriteByte(quote)

	return b.String()
}

// hexEscape escapes the character to a hex sequence and writes it to the string builder.
func hexEscape(w *strings.Builder, ch rune) {
	w.WriteByte('\\')
	if ch <= 0xffff { // Map 8-bit and 16-bit characters to '\uxxxx', since '\xhh' is a raw byte
		w.WriteByte('u')
		for shift := 12; shift >= 0; shift -= 4 {
			w.WriteByte(hexDigits[(ch>>shift)&0xf])
		}
	} else { // Map 21-bit characters to '\U00xxxxxx'
		w.WriteByte('U')
		for shift := 28; shift >= 0; shift -= 4 {
			w.WriteByte(hexDigits[(ch>>shift)&0xf])
		}
	}
}

// Unquote is the inverse of Repr. It accepts strings enclosed in single or double quotes
// and resolves the escape sequences, that Repr produces, including raw bytes of invalid UTF-8.
func Unquote(s string) (string, error) {
	if len(s) < 2 || s[0] != s[len(s)-1] || (s[0] != '\'' && s[0] != '"') {
		return "", ErrBadQuote
	}

	quote := s[0]
	s = s[1 : len(s)-1]

	var b strings.Builder
	b.Grow(len(s))

	for len(s) > 0 {
		value, multibyte, tail, err := strconv.UnquoteChar(s, quote)
		if err != nil {
			return "", err
		}

		// '\xhh' is a single byte, which may be invalid UTF-8
		if value < utf8.RuneSelf || !multibyte {
			b.WriteByte(byte(value))
		} else {
			b.WriteRune(value)
		}
		s = tail
	}

	return b.String(), nil
}
