package bundle

import (
	"crypto/sha512"
	"strconv"
)

// Deep hash over a nested structure of byte blobs.
// https://github.com/ArweaveTeam/arweave-standards/blob/master/ans/ANS-104.md
func DeepHash(values []any) [48]byte {
	tag := append([]byte("list"), []byte(strconv.Itoa(len(values)))...)
	acc := sha512.Sum384(tag)
	return deepHashList(values, acc)
}

func deepHashList(values []any, acc [48]byte) [48]byte {
	if len(values) == 0 {
		return acc
	}

	pair := append(acc[:], deepHashValue(values[0])...)
	acc = sha512.Sum384(pair)

	return deepHashList(values[1:], acc)
}

func deepHashValue(value any) []byte {
	switch v := value.(type) {
	case []any:
		out := DeepHash(v)
		return out[:]
	default:
		out := deepHashBlob(toBlob(value))
		return out[:]
	}
}

func deepHashBlob(blob []byte) [48]byte {
	tag := append([]byte("blob"), []byte(strconv.Itoa(len(blob)))...)
	tagHash := sha512.Sum384(tag)
	blobHash := sha512.Sum384(blob)
	return sha512.Sum384(append(tagHash[:], blobHash[:]...))
}

func toBlob(value any) []byte {
	switch v := value.(type) {
	case nil:
		return []byte{}
	case []byte:
		return v
	case string:
		return []byte(v)
	case Base64String:
		return v.Bytes()
	default:
		panic("unsupported deep hash type")
	}
}
