package ratelimit

// ActorKind classifies who is making an API request for bucketing purposes.
type ActorKind int

const (
	ActorAnonymous ActorKind = iota
	ActorUser
	ActorAPIKey
)

// Actor identifies the party a rate-limit bucket belongs to. Exactly one of
// the identity fields is meaningful per kind; IPHash doubles as the anonymous
// fallback.
type Actor struct {
	Kind     ActorKind
	UserID   string
	APIKeyID string
	IPHash   string
}

func Anonymous(ipHash string) Actor {
	return Actor{Kind: ActorAnonymous, IPHash: ipHash}
}

func User(userID string) Actor {
	return Actor{Kind: ActorUser, UserID: userID}
}

func APIKey(keyID string) Actor {
	return Actor{Kind: ActorAPIKey, APIKeyID: keyID}
}

// APIBucketKey is the stable bucket key for API traffic. API keys take
// precedence over user identity, then IP for everyone else.
func (a Actor) APIBucketKey() string {
	switch a.Kind {
	case ActorAPIKey:
		return "rl:api:key:" + nonEmpty(a.APIKeyID)
	case ActorUser:
		return "rl:api:user:" + nonEmpty(a.UserID)
	default:
		return "rl:api:ip:" + nonEmpty(a.IPHash)
	}
}

// RedirectBucketKey buckets redirect traffic by client IP hash only.
func RedirectBucketKey(ipHash string) string {
	return "rl:redirect:ip:" + nonEmpty(ipHash)
}

func nonEmpty(id string) string {
	if id == "" {
		return "unknown"
	}
	return id
}
