package acl

import (
	"net/url"
	"strings"

	"app/internal/model"
)

// ObjectPathPrefix is the canonical prefix for normalized object paths.
const ObjectPathPrefix = "/objects/"

// Policy decides access to subscriber resources and stored objects.
// It is a pure predicate over current state and never errors; missing
// state (no session, no user row) is a deny, not a failure.
type Policy struct {
	publicPrefixes []string
}

// NewPolicy builds a policy from the configured public-prefix allowlist.
// Blank entries are dropped.
func NewPolicy(publicPrefixes []string) *Policy {
	prefixes := make([]string, 0, len(publicPrefixes))
	for _, p := range publicPrefixes {
		p = strings.TrimSpace(p)
		if p != "" {
			prefixes = append(prefixes, p)
		}
	}
	return &Policy{publicPrefixes: prefixes}
}

// CanAccessSubscriberResource reports whether the user may touch
// postcard and order resources: the user row must exist and the
// subscription status must be exactly active.
func (p *Policy) CanAccessSubscriberResource(u *model.User) bool {
	return u != nil && u.SubscriptionStatus == model.SubscriptionStatusActive
}

// CanReadObject reports whether the object at normalizedPath may be read
// by the requester identified by userID (empty for anonymous). Objects
// under a public prefix are readable by anyone; everything else requires
// an authenticated identity. Subscription status is not consulted here.
func (p *Policy) CanReadObject(normalizedPath, userID string) bool {
	for _, prefix := range p.publicPrefixes {
		if strings.HasPrefix(normalizedPath, prefix) {
			return true
		}
	}
	return userID != ""
}

// NormalizeObjectPath canonicalizes an upload-result URL or raw storage
// key into the /objects/<relative-path> form. Absolute URLs lose their
// scheme, host, query and the leading bucket segment; anything else is
// treated as already relative. Normalizing a normalized path returns it
// unchanged.
func NormalizeObjectPath(raw string) string {
	if u, err := url.Parse(raw); err == nil && u.IsAbs() {
		path := strings.TrimPrefix(u.Path, "/")
		// First segment is the bucket name.
		_, rest, _ := strings.Cut(path, "/")
		return ObjectPathPrefix + rest
	}
	if strings.HasPrefix(raw, ObjectPathPrefix) {
		return raw
	}
	return ObjectPathPrefix + strings.TrimPrefix(raw, "/")
}

// ToBucketKey strips the canonical prefix, yielding the object's key
// within the bucket.
func ToBucketKey(normalizedPath string) string {
	return strings.TrimPrefix(normalizedPath, ObjectPathPrefix)
}
