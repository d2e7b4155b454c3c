package words

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// Daily hands out the same word to every game started on a given UTC day.
type Daily struct {
	list *List
	salt string
	now  func() time.Time
}

// NewDaily returns a Source keyed on today's date and salt.
func NewDaily(list *List, salt string) *Daily {
	return &Daily{list: list, salt: salt, now: time.Now}
}

// RandomWord returns the word of the day.
func (d *Daily) RandomWord(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return d.list.At(WordIndex(d.now(), d.salt, d.list.Len())), nil
}

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WordIndex returns a deterministic index for a date using HMAC(salt, YYYY-MM-DD) % n.
func WordIndex(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// take first 8 bytes to uint64 for modulus distribution
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}
