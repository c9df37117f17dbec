package auth

import "golang.org/x/crypto/bcrypt"

// MinCost is the lowest bcrypt work factor we accept. Anything below is
// bumped up so a misconfigured deployment never weakens stored hashes.
const MinCost = 10

// Hasher wraps bcrypt with a configured work factor.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost < MinCost {
		cost = MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Check reports whether plain matches digest. A malformed stored digest
// counts as a failed verification, never an error.
func (h *Hasher) Check(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
