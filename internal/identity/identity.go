// Package identity derives SKU fingerprints and per-pair traceable codes
// from shoe attributes. Fingerprints key the merge decision on restock and
// prefix every printed label; traceable codes add a batch timestamp and a
// sequence index so two pairs minted in the same process tick never collide.
package identity

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// missingArticle substitutes for an absent article number inside codes.
const missingArticle = "NA"

// Fingerprint derives the stable SKU code for (brand, articleNumber, size).
// Color and price are deliberately excluded: the fingerprint identifies the
// physical model/size, not a specific price point.
func Fingerprint(brand, articleNumber string, size float64) string {
	article := articleNumber
	if article == "" {
		article = missingArticle
	}
	return fmt.Sprintf("%s-%s-%s", brand, article, FormatSize(size))
}

// TraceableCode mints the label code for one physical pair: the fingerprint
// plus the batch timestamp in milliseconds and the unit's index within the
// batch. Uniqueness across batches rests on the timestamp and is best
// effort, not cryptographic.
func TraceableCode(brand, articleNumber string, size float64, batch time.Time, seq int) string {
	return fmt.Sprintf("%s-%d-%d", Fingerprint(brand, articleNumber, size), batch.UnixMilli(), seq)
}

// BaseCode reduces a scanned per-unit code back to its fingerprint by
// stripping the trailing batch/sequence suffix. Codes without a suffix are
// returned unchanged. The batch segment must look like a millisecond
// timestamp so fingerprints with numeric article segments are left intact.
func BaseCode(scanned string) string {
	parts := strings.Split(scanned, "-")
	if len(parts) < 5 {
		return scanned
	}
	batch, seq := parts[len(parts)-2], parts[len(parts)-1]
	if len(batch) < 10 || !allDigits(batch) || !allDigits(seq) {
		return scanned
	}
	return strings.Join(parts[:len(parts)-2], "-")
}

// FormatSize renders a numeric shoe size the way it appears in codes:
// whole sizes without a decimal point, half sizes with one.
func FormatSize(size float64) string {
	return strconv.FormatFloat(size, 'f', -1, 64)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
