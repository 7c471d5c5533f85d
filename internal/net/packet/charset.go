package packet

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// Charset converts between UTF-8 and the client string encoding.
// The zero value passes strings through as UTF-8.
type Charset struct {
	Name string
	enc  encoding.Encoding
}

// Big5 is the default client charset (MS950).
var Big5 = Charset{Name: "big5", enc: traditionalchinese.Big5}

// LookupCharset returns the charset for a config name.
func LookupCharset(name string) (Charset, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "-", "_")) {
	case "big5", "ms950":
		return Big5, nil
	case "gbk", "gb2312":
		return Charset{Name: "gbk", enc: simplifiedchinese.GBK}, nil
	case "shift_jis", "sjis":
		return Charset{Name: "shift_jis", enc: japanese.ShiftJIS}, nil
	case "euc_kr":
		return Charset{Name: "euc-kr", enc: korean.EUCKR}, nil
	case "utf8", "utf_8", "":
		return Charset{Name: "utf-8"}, nil
	}
	return Charset{}, fmt.Errorf("unknown charset %q", name)
}

// Encode converts UTF-8 to the client encoding. Unencodable text falls
// back to the raw bytes.
func (c Charset) Encode(s string) []byte {
	if c.enc == nil || isASCII(s) {
		return []byte(s)
	}
	out, err := c.enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return out
}

// Decode converts client bytes to UTF-8. Pure ASCII passes through.
func (c Charset) Decode(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	if c.enc == nil || isASCII(string(raw)) {
		return string(raw)
	}
	out, err := c.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(out)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
