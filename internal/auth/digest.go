package auth

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrNoCredentials is returned when a challenge arrives but no username is configured.
var ErrNoCredentials = errors.New("digest challenge received but no credentials configured")

// Challenge holds the parameters of a WWW-Authenticate: Digest header.
type Challenge struct {
	Realm     string
	Nonce     string
	Opaque    string
	Algorithm string
	QOP       []string
}

// ParseChallenge reads a WWW-Authenticate header value. It reports false when
// the header is not a Digest challenge or carries no nonce.
func ParseChallenge(header string) (Challenge, bool) {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "digest ") {
		return Challenge{}, false
	}
	params := parseParams(header[7:])
	ch := Challenge{
		Realm:     params["realm"],
		Nonce:     params["nonce"],
		Opaque:    params["opaque"],
		Algorithm: params["algorithm"],
	}
	for _, q := range strings.Split(params["qop"], ",") {
		if q = strings.TrimSpace(q); q != "" {
			ch.QOP = append(ch.QOP, q)
		}
	}
	return ch, ch.Nonce != ""
}

// parseParams splits `k=v, k="v,with,commas"` pairs. Keys are lower-cased.
func parseParams(s string) map[string]string {
	out := make(map[string]string)
	for len(s) > 0 {
		s = strings.TrimLeft(s, " ,\t")
		eq := strings.IndexByte(s, '=')
		if eq < 0 {
			break
		}
		key := strings.ToLower(strings.TrimSpace(s[:eq]))
		s = strings.TrimLeft(s[eq+1:], " \t")

		var val string
		if strings.HasPrefix(s, `"`) {
			end := 1
			for end < len(s) && s[end] != '"' {
				if s[end] == '\\' {
					end++
				}
				end++
			}
			val = strings.ReplaceAll(s[1:min(end, len(s))], `\"`, `"`)
			s = s[min(end+1, len(s)):]
		} else {
			comma := strings.IndexByte(s, ',')
			if comma < 0 {
				comma = len(s)
			}
			val = strings.TrimSpace(s[:comma])
			s = s[comma:]
		}
		out[key] = val
	}
	return out
}

// Digest answers Digest challenges for one connection. The nonce count
// increases with every Authorize call on the same instance.
type Digest struct {
	Username string
	Password string
	// CNonce generates client nonces; replaced in tests.
	CNonce func() string

	nc atomic.Uint32
}

// NewDigest creates a Digest responder for the given credentials.
func NewDigest(username, password string) *Digest {
	return &Digest{
		Username: username,
		Password: password,
		CNonce: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")
		},
	}
}

// Authorize builds the Authorization header value for method and uri.
func (d *Digest) Authorize(ch Challenge, method, uri string) (string, error) {
	if d.Username == "" {
		return "", ErrNoCredentials
	}

	algorithm := ch.Algorithm
	if algorithm == "" {
		algorithm = "MD5"
	}
	if !strings.EqualFold(algorithm, "MD5") && !strings.EqualFold(algorithm, "MD5-sess") {
		return "", fmt.Errorf("unsupported digest algorithm %q", algorithm)
	}

	qop := pickQOP(ch.QOP)
	var cnonce, nc string
	if qop != "" || strings.EqualFold(algorithm, "MD5-sess") {
		cnonce = d.CNonce()
	}
	if qop != "" {
		nc = fmt.Sprintf("%08x", d.nc.Add(1))
	}

	response := Response(d.Username, d.Password, ch.Realm, ch.Nonce, method, uri, algorithm, qop, nc, cnonce)

	var b strings.Builder
	fmt.Fprintf(&b, `Digest username="%s", realm="%s", nonce="%s", uri="%s", algorithm=%s, response="%s"`,
		d.Username, ch.Realm, ch.Nonce, uri, algorithm, response)
	if qop != "" {
		fmt.Fprintf(&b, `, qop=%s, nc=%s, cnonce="%s"`, qop, nc, cnonce)
	}
	if ch.Opaque != "" {
		fmt.Fprintf(&b, `, opaque="%s"`, ch.Opaque)
	}
	return b.String(), nil
}

func pickQOP(offered []string) string {
	for _, q := range offered {
		if strings.EqualFold(q, "auth") {
			return "auth"
		}
	}
	for _, q := range offered {
		if strings.EqualFold(q, "auth-int") {
			return "auth-int"
		}
	}
	return ""
}

// Response computes the digest response hash (RFC 2617). Requests are GETs
// without a body, so auth-int hashes the empty entity.
func Response(username, password, realm, nonce, method, uri, algorithm, qop, nc, cnonce string) string {
	ha1 := md5Hex(username + ":" + realm + ":" + password)
	if strings.EqualFold(algorithm, "MD5-sess") {
		ha1 = md5Hex(ha1 + ":" + nonce + ":" + cnonce)
	}

	ha2 := md5Hex(method + ":" + uri)
	if qop == "auth-int" {
		ha2 = md5Hex(method + ":" + uri + ":" + md5Hex(""))
	}

	if qop == "" {
		return md5Hex(ha1 + ":" + nonce + ":" + ha2)
	}
	return md5Hex(ha1 + ":" + nonce + ":" + nc + ":" + cnonce + ":" + qop + ":" + ha2)
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
