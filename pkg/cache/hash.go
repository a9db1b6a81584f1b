package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// digest returns the hex SHA-256 of data.
func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey builds "<prefix>:<digest>" from the JSON form of v. Field order in
// structs is fixed, so equal values give equal keys.
func hashKey(prefix string, v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(fmt.Sprintf("%#v", v))
	}
	return prefix + ":" + digest(data)
}

// shard maps a key to a two-character directory and a file stem, keeping any
// one directory at no more than 256 entries.
func shard(key string) (dir, stem string) {
	d := digest([]byte(key))
	return d[:2], d[2:]
}
