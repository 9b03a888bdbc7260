// Package cas provides content addressing for stored documents: BLAKE3
// hashing over canonical JSON, so a rule or proof gets the same identifier
// no matter which machine or field order produced it.
package cas

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"lukechampine.com/blake3"
)

// NowMs returns the current time in milliseconds since epoch.
func NowMs() int64 {
	return time.Now().UnixMilli()
}

// CanonicalJSON converts a value to canonical JSON (stable key ordering).
func CanonicalJSON(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var obj interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	return canonicalMarshal(obj)
}

func canonicalMarshal(v interface{}) ([]byte, error) {
	switch val := v.(type) {
	case map[string]interface{}:
		return marshalSortedMap(val)
	case []interface{}:
		return marshalArray(val)
	default:
		return json.Marshal(v)
	}
}

func marshalSortedMap(m map[string]interface{}) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := canonicalMarshal(m[k])
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalArray(arr []interface{}) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		valBytes, err := canonicalMarshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// Blake3Hash computes a BLAKE3 hash of the input.
func Blake3Hash(data []byte) []byte {
	hash := blake3.Sum256(data)
	return hash[:]
}

// DocumentID computes the content-addressed ID for a stored document:
// blake3(kind + "\n" + canonicalJSON(payload)).
func DocumentID(kind string, payload interface{}) ([]byte, error) {
	canonical, err := CanonicalJSON(payload)
	if err != nil {
		return nil, err
	}
	data := append([]byte(kind+"\n"), canonical...)
	return Blake3Hash(data), nil
}

// DocumentIDHex computes the content-addressed ID and returns it as hex.
func DocumentIDHex(kind string, payload interface{}) (string, error) {
	id, err := DocumentID(kind, payload)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(id), nil
}
