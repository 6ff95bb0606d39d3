package util

import gonanoid "github.com/matoous/go-nanoid/v2"

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewID returns a random alphanumeric identifier of length n
func NewID(n int) (string, error) {
	return gonanoid.Generate(charset, n)
}

// MustID is NewID for callers that can't handle the error, like request IDs
func MustID(n int) string {
	return gonanoid.MustGenerate(charset, n)
}
