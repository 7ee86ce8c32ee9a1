// Package textenc converts text of unknown legacy encodings to UTF-8.
package textenc

import (
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// minConfidence is the lowest chardet confidence trusted for multi-byte
// charsets.
const minConfidence = 30

// DetectAndDecode returns data as UTF-8. Valid UTF-8 passes through.
// Text whose non-ASCII bytes all stand alone is decoded as Windows-1252
// (a superset of Latin-1 for printable characters); otherwise the charset
// is detected with chardet. The result is always valid UTF-8.
func DetectAndDecode(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}

	if isolatedHighBytes(data) {
		return decode(charmap.Windows1252, data)
	}

	if res, err := chardet.NewTextDetector().DetectBest(data); err == nil && res.Confidence >= minConfidence {
		if enc := EncodingByName(res.Charset); enc != nil {
			if s, err := decode(enc, data); err == nil && s != "" {
				return s, nil
			}
		}
	}

	return decode(charmap.Windows1252, data)
}

func decode(enc encoding.Encoding, data []byte) (string, error) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return SanitizeUTF8(string(out)), nil
}

// isolatedHighBytes reports whether every byte >= 0x80 is surrounded by
// ASCII, the shape of single-byte Western text. Multi-byte CJK encodings
// produce runs of high bytes.
func isolatedHighBytes(data []byte) bool {
	for i, b := range data {
		if b < 0x80 {
			continue
		}
		if i+1 < len(data) && data[i+1] >= 0x80 {
			return false
		}
	}
	return true
}

// EncodingByName maps a charset name (as reported by chardet or a MIME
// header) to its decoder, or nil if unsupported.
func EncodingByName(charset string) encoding.Encoding {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "windows-1252", "cp1252":
		return charmap.Windows1252
	case "iso-8859-1", "latin1", "iso_8859-1":
		return charmap.ISO8859_1
	case "iso-8859-2", "latin2":
		return charmap.ISO8859_2
	case "iso-8859-5":
		return charmap.ISO8859_5
	case "iso-8859-7":
		return charmap.ISO8859_7
	case "iso-8859-9":
		return charmap.ISO8859_9
	case "iso-8859-15":
		return charmap.ISO8859_15
	case "windows-1250", "cp1250":
		return charmap.Windows1250
	case "windows-1251", "cp1251":
		return charmap.Windows1251
	case "koi8-r":
		return charmap.KOI8R
	case "shift_jis", "shift-jis", "sjis":
		return japanese.ShiftJIS
	case "euc-jp":
		return japanese.EUCJP
	case "iso-2022-jp":
		return japanese.ISO2022JP
	case "euc-kr":
		return korean.EUCKR
	case "gbk", "gb2312":
		return simplifiedchinese.GBK
	case "gb18030", "gb-18030":
		return simplifiedchinese.GB18030
	case "big5":
		return traditionalchinese.Big5
	}
	return nil
}

// SanitizeUTF8 replaces each invalid byte with U+FFFD.
func SanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			b.WriteRune(utf8.RuneError)
		} else {
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}
