// Package captcha issues the login form's challenge code. Only a bcrypt
// hash of the answer leaves the server, in a short-lived cookie.
package captcha

import (
	"fmt"
	"html"
	"html/template"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

const (
	CookieName = "login-flow"
	CodeLength = 6

	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	hashKey  = "captcha_hash"
	maxAge   = 10 * 60
)

type Generator struct {
	mu         sync.Mutex
	randSource *rand.Rand
}

func NewGenerator() *Generator {
	return &Generator{randSource: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Code returns n characters drawn from alphabet.
func (g *Generator) Code(n int) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(alphabet[g.randSource.Intn(len(alphabet))])
	}
	return b.String()
}

// tilt returns a small rotation for one glyph of the rendered code.
func (g *Generator) tilt() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.randSource.Intn(31) - 15
}

// SVG renders code as a 150x50 image with each glyph slightly rotated.
func (g *Generator) SVG(code string) template.HTML {
	var b strings.Builder
	b.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="150" height="50" role="img" aria-label="captcha">`)
	b.WriteString(`<rect width="150" height="50" fill="lightgrey"/>`)
	for i, ch := range code {
		x := 18 + i*22
		fmt.Fprintf(&b, `<text x="%d" y="34" font-family="Arial" font-size="28" transform="rotate(%d %d 30)">%s</text>`,
			x, g.tilt(), x, html.EscapeString(string(ch)))
	}
	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}

// Flow keeps the pending challenge for one browser.
type Flow struct {
	store *sessions.CookieStore
	gen   *Generator
}

func NewFlow(store *sessions.CookieStore, gen *Generator) *Flow {
	return &Flow{store: store, gen: gen}
}

// Issue creates a new challenge, replacing any pending one, and returns
// its rendered image.
func (f *Flow) Issue(w http.ResponseWriter, r *http.Request) (template.HTML, error) {
	code := f.gen.Code(CodeLength)

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash captcha: %w", err)
	}

	sess, _ := f.store.Get(r, CookieName)
	sess.Values[hashKey] = string(hash)
	sess.Options.MaxAge = maxAge
	if err := sess.Save(r, w); err != nil {
		return "", fmt.Errorf("save captcha: %w", err)
	}

	return f.gen.SVG(code), nil
}

// Check compares answer with the pending challenge. A challenge can be
// answered once; every Check consumes it, and a challenge that could not
// be cleared from the cookie is refused.
func (f *Flow) Check(w http.ResponseWriter, r *http.Request, answer string) bool {
	sess, err := f.store.Get(r, CookieName)
	if err != nil {
		return false
	}

	hash, _ := sess.Values[hashKey].(string)
	delete(sess.Values, hashKey)
	if err := sess.Save(r, w); err != nil {
		slog.Error("consume captcha", "error", err)
		return false
	}

	if hash == "" || answer == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(answer)) == nil
}
