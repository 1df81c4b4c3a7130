package cache

import "strings"

const (
	GlobalKeyPrefix = "quizform"

	// Namespaces for the QR pairing flow.
	NamespacePairing = "pairing"
	// ObjectQRToken keys hold a marker while a QR token awaits redemption
	// and the authenticated claim afterwards.
	ObjectQRToken = "token"
	// ObjectClientAddr keys map a remote address to its pairing slot for
	// last-connection-wins eviction.
	ObjectClientAddr = "addr"
)

// GenerateCacheKey generates a cache key for a given service, object type, and identifier.
// If paramsKey are provided, they are joined by "_" and appended to the cache key.
func GenerateCacheKey(serviceName, objectType, identifier string, paramsKey ...string) string {
	baseKey := strings.Join([]string{GlobalKeyPrefix, serviceName, objectType, identifier}, ":")
	if len(paramsKey) > 0 {
		return strings.Join([]string{baseKey, strings.Join(paramsKey, "_")}, ":")
	}
	return baseKey
}

// QRTokenKey is the cache key for one QR login token.
func QRTokenKey(token string) string {
	return GenerateCacheKey(NamespacePairing, ObjectQRToken, token)
}

// ClientAddrKey is the cache key associating a remote address with a pairing slot.
func ClientAddrKey(addr string) string {
	return GenerateCacheKey(NamespacePairing, ObjectClientAddr, addr)
}
