package redis

import "strings"

// KeyNamespace prefixes every key this service writes.
const KeyNamespace = "beloved"

// KeyBuilder builds keys of the form {namespace}:{part}:{part}.
type KeyBuilder struct {
	parts []string
}

// NewKeyBuilder creates a new key builder.
func NewKeyBuilder() *KeyBuilder {
	return &KeyBuilder{parts: []string{KeyNamespace}}
}

// Entity adds an entity type to the key.
func (kb *KeyBuilder) Entity(entity string) *KeyBuilder {
	kb.parts = append(kb.parts, entity)
	return kb
}

// ID adds an identifier to the key.
func (kb *KeyBuilder) ID(id string) *KeyBuilder {
	kb.parts = append(kb.parts, id)
	return kb
}

// Build constructs the final key string.
func (kb *KeyBuilder) Build() string {
	return strings.Join(kb.parts, ":")
}

// RateLimitKey returns the counter key for a limiter scope and client.
// Example: beloved:ratelimit:contact:203.0.113.9
func RateLimitKey(scope, id string) string {
	return NewKeyBuilder().Entity("ratelimit").Entity(scope).ID(id).Build()
}
