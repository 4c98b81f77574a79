package store

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"strings"
)

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32 (lowercase, no padding).
// 8 chars base32 ~= 40 bits (~1 trillion) of space.
func newRandomID(prefix string) (string, error) {
	var b [5]byte // 40 bits -> 8 base32 chars
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return prefix + "-" + suffix, nil
}

func newUniqueID(ctx context.Context, q queryer, prefix string) (string, error) {
	for i := 0; i < 8; i++ {
		id, err := newRandomID(prefix)
		if err != nil {
			return "", err
		}
		exists, err := idExists(ctx, q, id)
		if err != nil {
			return "", err
		}
		if !exists {
			return id, nil
		}
	}
	return "", errors.New("could not allocate a unique id")
}

func idExists(ctx context.Context, q queryer, id string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(1) FROM workspaces WHERE id = ?)
		     + (SELECT COUNT(1) FROM folders WHERE id = ?)
		     + (SELECT COUNT(1) FROM leaves WHERE id = ?)`,
		id, id, id,
	).Scan(&n)
	return n > 0, err
}
