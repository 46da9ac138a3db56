package toggle

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
)

const (
	// IdentityKey is the context attribute used as the bucketing identifier.
	IdentityKey = "uuid"

	// BucketResolution is the number of buckets an identifier can fall into.
	BucketResolution = 10000

	hashPrefixLen = 6
	hashMax       = 0xFFFFFF

	// rangeEpsilon absorbs float drift in cumulative sums such as 3 x 1/3.
	rangeEpsilon = 1e-9
)

// Bucket returns the bucket index in [0, BucketResolution) for id salted with salt.
// The result depends only on the inputs, so every process agrees on it.
func Bucket(id, salt string) int {
	sum := md5.Sum([]byte(id + "-" + salt))
	prefix := hex.EncodeToString(sum[:])[:hashPrefixLen]

	// Six hex digits always fit; the error is unreachable.
	v, _ := strconv.ParseUint(prefix, 16, 32)
	ratio := float64(v) / hashMax

	bucket := int(math.Floor(ratio * BucketResolution))
	if bucket >= BucketResolution {
		bucket = BucketResolution - 1
	}
	return bucket
}

// Assign places id into one of the allocations using cumulative ranges in
// declaration order. When the ratios sum below 1 the id may fall into the
// uncovered tail and the result is not valid.
func Assign(id, salt string, allocations []Allocation) AssertionResult {
	bucket := Bucket(id, salt)

	var cumulative float64
	for _, a := range allocations {
		cumulative += a.Ratio * BucketResolution
		if int(math.Floor(cumulative+rangeEpsilon)) > bucket {
			return AssertionResult{
				Valid:        true,
				RolloutValue: a.Value,
				VariationID:  a.Name,
			}
		}
	}
	return AssertionResult{}
}

// identifierFrom extracts the bucketing identifier from attrs.
func identifierFrom(attrs Attributes) (string, error) {
	raw, ok := attrs[IdentityKey]
	if !ok || raw == nil {
		return "", ErrMissingIdentifier
	}

	var id string
	switch v := raw.(type) {
	case string:
		id = v
	case float64:
		id = strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		id = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		id = strconv.Itoa(v)
	case int64:
		id = strconv.FormatInt(v, 10)
	case fmt.Stringer:
		id = v.String()
	default:
		id = fmt.Sprint(v)
	}

	if id == "" {
		return "", ErrMissingIdentifier
	}
	return id, nil
}
