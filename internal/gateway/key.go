package gateway

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const (
	defaultExtension = "bin"

	tokenAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	tokenLength   = 13
)

// BuildKey returns "{folder}/{unixMillis}_{token}.{extension}".
// Keys are unique with high probability only; collisions are not detected.
func BuildKey(folder, filename string, now time.Time, token string) string {
	if folder == "" {
		folder = DefaultFolder
	}
	return fmt.Sprintf("%s/%d_%s.%s", folder, now.UnixMilli(), token, Extension(filename))
}

// Extension is the part of filename after the last dot, or "bin".
func Extension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 || i == len(filename)-1 {
		return defaultExtension
	}
	return filename[i+1:]
}

// NormalizeBaseURL adds https:// when no scheme is present and strips one
// trailing slash.
func NormalizeBaseURL(base string) string {
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return strings.TrimSuffix(base, "/")
}

func JoinURL(base, key string) string {
	return NormalizeBaseURL(base) + "/" + key
}

func randomToken() (string, error) {
	max := big.NewInt(int64(len(tokenAlphabet)))
	b := make([]byte, tokenLength)
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = tokenAlphabet[n.Int64()]
	}
	return string(b), nil
}

func contentTypeByName(filename string) string {
	return mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
}

func sniffContentType(data []byte) string {
	return mimetype.Detect(data).String()
}
