// Package password produces and verifies memory-hard password hashes.
package password

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dtroode/sessiongate/internal/model"
	"github.com/dtroode/sessiongate/internal/workerpool"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const saltLength = 16

// Hasher hashes and verifies passwords under a Policy. Derivation runs on a worker pool.
type Hasher struct {
	policy Policy
	pool   *workerpool.Pool
	dummy  string
}

// NewHasher validates policy and returns a Hasher bound to pool.
func NewHasher(policy Policy, pool *workerpool.Pool) (*Hasher, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, fmt.Errorf("%w: worker pool is required", model.ErrConfigInvalid)
	}

	h := &Hasher{policy: policy.clone(), pool: pool}

	filler := make([]byte, 32)
	if _, err := rand.Read(filler); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrHashingFailed, err)
	}
	dummy, err := h.encode(base64.RawStdEncoding.EncodeToString(filler))
	if err != nil {
		return nil, err
	}
	h.dummy = dummy

	return h, nil
}

// Policy returns the policy new hashes are produced with.
func (h *Hasher) Policy() Policy {
	return h.policy.clone()
}

// Hash derives a hash of password with a fresh random salt.
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if h == nil || h.pool == nil {
		return "", fmt.Errorf("%w: hasher was not built with NewHasher", model.ErrConfigInvalid)
	}

	encoded, err := workerpool.Do(ctx, h.pool, func() (string, error) {
		return h.encode(password)
	})
	if err != nil {
		if isContextErr(err) || errors.Is(err, model.ErrHashingFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", model.ErrHashingFailed, err)
	}

	return encoded, nil
}

// Verify reports whether password matches encoded. The digest is re-derived
// with the parameters stored in encoded, not the current policy.
//
// A wrong password is (false, nil). An unparsable hash or one whose parameters
// are out of range yields ErrHashMalformed.
func (h *Hasher) Verify(ctx context.Context, password, encoded string) (bool, error) {
	if h == nil || h.pool == nil {
		return false, fmt.Errorf("%w: hasher was not built with NewHasher", model.ErrConfigInvalid)
	}

	if isBcrypt(encoded) {
		return h.run(ctx, func() (bool, error) {
			return verifyBcrypt(password, encoded)
		})
	}

	phc, err := decode(encoded)
	if err != nil {
		return false, err
	}

	return h.run(ctx, func() (bool, error) {
		digest := h.derive(password, phc.salt, phc.policy)
		return subtle.ConstantTimeCompare(digest, phc.digest) == 1, nil
	})
}

// VerifyDummy burns the same effort as a real verification. It is used when
// there is no stored hash so that the caller's timing does not reveal it.
func (h *Hasher) VerifyDummy(ctx context.Context, password string) {
	_, _ = h.Verify(ctx, password, h.dummy)
}

// NeedsRehash reports whether encoded was produced with memory, iterations
// or parallelism strictly below the current policy. Legacy bcrypt hashes always need one.
func (h *Hasher) NeedsRehash(encoded string) (bool, error) {
	if isBcrypt(encoded) {
		if _, err := bcrypt.Cost([]byte(encoded)); err != nil {
			return false, fmt.Errorf("%w: %v", model.ErrHashMalformed, err)
		}
		return true, nil
	}

	phc, err := decode(encoded)
	if err != nil {
		return false, err
	}

	return phc.policy.MemoryCostKB < h.policy.MemoryCostKB ||
		phc.policy.Iterations < h.policy.Iterations ||
		phc.policy.Parallelism < h.policy.Parallelism, nil
}

func (h *Hasher) run(ctx context.Context, fn func() (bool, error)) (bool, error) {
	ok, err := workerpool.Do(ctx, h.pool, fn)
	if err != nil {
		if isContextErr(err) || errors.Is(err, model.ErrHashMalformed) {
			return false, err
		}
		return false, fmt.Errorf("%w: %v", model.ErrInternal, err)
	}
	return ok, nil
}

func (h *Hasher) encode(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("%w: salt: %v", model.ErrHashingFailed, err)
	}

	digest := h.derive(password, salt, h.policy)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		h.policy.Variant,
		argon2.Version,
		h.policy.MemoryCostKB,
		h.policy.Iterations,
		h.policy.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// derive runs argon2 with the cost parameters of p and the pepper of the hasher's policy.
func (h *Hasher) derive(password string, salt []byte, p Policy) []byte {
	input := []byte(password)
	if len(h.policy.SecretKey) > 0 {
		mac := hmac.New(sha256.New, h.policy.SecretKey)
		mac.Write(input)
		input = mac.Sum(nil)
	}

	threads := uint8(p.Parallelism) // #nosec G115 -- bounded to 8 by Validate.
	if p.Variant == VariantArgon2i {
		return argon2.Key(input, salt, p.Iterations, p.MemoryCostKB, threads, p.OutputLength)
	}
	return argon2.IDKey(input, salt, p.Iterations, p.MemoryCostKB, threads, p.OutputLength)
}

type phcHash struct {
	policy Policy
	salt   []byte
	digest []byte
}

// decode parses $<variant>$v=19$m=<m>,t=<t>,p=<p>$<salt>$<digest>.
func decode(encoded string) (phcHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return phcHash{}, fmt.Errorf("%w: expected 5 segments", model.ErrHashMalformed)
	}

	variant := Variant(parts[1])
	if variant != VariantArgon2id && variant != VariantArgon2i {
		return phcHash{}, fmt.Errorf("%w: unsupported variant %q", model.ErrHashMalformed, parts[1])
	}

	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return phcHash{}, fmt.Errorf("%w: unsupported version %q", model.ErrHashMalformed, parts[2])
	}

	kv, err := parseParams(parts[3])
	if err != nil {
		return phcHash{}, fmt.Errorf("%w: %v", model.ErrHashMalformed, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) < 8 || len(salt) > 64 {
		return phcHash{}, fmt.Errorf("%w: bad salt", model.ErrHashMalformed)
	}
	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return phcHash{}, fmt.Errorf("%w: bad digest", model.ErrHashMalformed)
	}

	p := Policy{
		MemoryCostKB: kv["m"],
		Iterations:   kv["t"],
		Parallelism:  kv["p"],
		OutputLength: uint32(len(digest)), // #nosec G115 -- checked by Validate below.
		Variant:      variant,
	}
	// Parameters are attacker-influenced once stored, so they get the same bounds as a policy.
	if err := p.Validate(); err != nil {
		return phcHash{}, fmt.Errorf("%w: %v", model.ErrHashMalformed, err)
	}

	return phcHash{policy: p, salt: salt, digest: digest}, nil
}

func parseParams(segment string) (map[string]uint32, error) {
	kv := make(map[string]uint32, 3)
	for _, pair := range strings.Split(segment, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("bad parameter %q", pair)
		}
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad value for %q: %v", k, err)
		}
		if _, dup := kv[k]; dup {
			return nil, fmt.Errorf("duplicate parameter %q", k)
		}
		kv[k] = uint32(n)
	}
	for _, k := range []string{"m", "t", "p"} {
		if _, ok := kv[k]; !ok {
			return nil, fmt.Errorf("missing parameter %q", k)
		}
	}
	if len(kv) != 3 {
		return nil, fmt.Errorf("unexpected parameters in %q", segment)
	}
	return kv, nil
}

func isBcrypt(encoded string) bool {
	return strings.HasPrefix(encoded, "$2a$") ||
		strings.HasPrefix(encoded, "$2b$") ||
		strings.HasPrefix(encoded, "$2y$")
}

func verifyBcrypt(password, encoded string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrPasswordTooLong):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", model.ErrHashMalformed, err)
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
