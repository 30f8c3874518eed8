// Package identity produces the transport identity presented to the
// generation backend: a User-Agent plus an anonymous-user cookie. The
// backend expects a distinct identity per generation attempt; within one
// attempt the identity is reused so the cookie correlates with the
// conversation id handed out at initiation.
package identity

import (
	"strings"

	"github.com/google/uuid"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Identity is one set of headers for outbound backend calls.
type Identity struct {
	UserAgent string
	// Cookie is the anonymous_user_id value, a 32-char hex token.
	Cookie string
}

// Provider hands out identities. Implementations must be safe for
// concurrent use; identities are values and never mutated after creation.
type Provider interface {
	NewIdentity() Identity
}

// Rotating returns a fresh anonymous cookie on every call, mimicking
// distinct end users toward the backend.
type Rotating struct {
	// UserAgent overrides the default browser User-Agent when set.
	UserAgent string
}

func NewRotating() *Rotating {
	return &Rotating{}
}

func (r *Rotating) NewIdentity() Identity {
	ua := r.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return Identity{
		UserAgent: ua,
		Cookie:    strings.ReplaceAll(uuid.NewString(), "-", ""),
	}
}

// Static presents one stable identity for every call. Intended for
// cooperative backends where rotation is unnecessary.
type Static struct {
	ident Identity
}

func NewStatic() *Static {
	return &Static{ident: (&Rotating{}).NewIdentity()}
}

func (s *Static) NewIdentity() Identity {
	return s.ident
}

var (
	_ Provider = (*Rotating)(nil)
	_ Provider = (*Static)(nil)
)
