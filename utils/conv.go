package utils

import (
	"bytes"

	"github.com/mogaika/m3_browser/config"

	"golang.org/x/text/transform"
)

// BytesToString decodes a nil-terminated string through the configured charmap.
func BytesToString(bs []byte) string {
	n := bytes.IndexByte(bs, 0)
	if n < 0 {
		n = len(bs)
	}

	s, _, err := transform.Bytes(config.GetEncoding().NewDecoder(), bs[0:n])
	if err != nil {
		// single byte charmaps never fail to decode
		panic(err)
	}

	return string(s)
}

func ReverseBytes(a []byte) []byte {
	r := make([]byte, len(a))
	j := len(r)
	for _, b := range a {
		j--
		r[j] = b
	}
	return r
}
