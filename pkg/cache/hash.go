package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashLines hashes lines joined by newlines. The pipeline uses it to address
// a line of node ids under a graph hash.
func HashLines(lines ...string) string {
	return Hash([]byte(strings.Join(lines, "\n")))
}

// hashKey builds "stage:sha256(json(parts))". Options structs marshal with
// stable field order, so equal options give equal keys.
func hashKey(stage string, parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		data = fmt.Appendf(nil, "%v", parts)
	}
	return stage + ":" + Hash(data)
}
