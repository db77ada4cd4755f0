package password

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dtroode/sessiongate/internal/model"
	"github.com/go-playground/validator/v10"
)

// Variant is the argon2 flavour a hash is derived with.
type Variant string

const (
	// VariantArgon2id is the hybrid variant and the default.
	VariantArgon2id Variant = "argon2id"
	// VariantArgon2i is the data-independent variant.
	VariantArgon2i Variant = "argon2i"
)

// Profile names a predefined policy.
type Profile string

const (
	ProfileDefault     Profile = "default"
	ProfileDevelopment Profile = "development"
	ProfileProduction  Profile = "production"
)

// Policy holds the cost parameters new hashes are produced with.
type Policy struct {
	MemoryCostKB uint32  `validate:"gte=1024,lte=1048576"`
	Iterations   uint32  `validate:"gte=1,lte=10"`
	Parallelism  uint32  `validate:"gte=1,lte=8"`
	OutputLength uint32  `validate:"gte=16,lte=64"`
	Variant      Variant `validate:"oneof=argon2id argon2i"`
	// SecretKey is an optional pepper mixed into the password before derivation.
	SecretKey []byte
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultPolicy returns the baseline policy: 19 MiB, two passes, one lane.
func DefaultPolicy() Policy {
	return Policy{
		MemoryCostKB: 19456,
		Iterations:   2,
		Parallelism:  1,
		OutputLength: 32,
		Variant:      VariantArgon2id,
	}
}

// PolicyFor returns the policy of the named profile. An empty name selects the default profile.
func PolicyFor(profile Profile) (Policy, error) {
	p := DefaultPolicy()
	switch profile {
	case "", ProfileDefault:
	case ProfileDevelopment:
		p.MemoryCostKB = 4096
		p.Iterations = 1
		p.Parallelism = 1
	case ProfileProduction:
		p.MemoryCostKB = 65536
		p.Iterations = 3
		p.Parallelism = 4
	default:
		return Policy{}, fmt.Errorf("%w: unknown argon profile %q", model.ErrConfigInvalid, profile)
	}
	return p, nil
}

// Validate checks every parameter against its allowed range.
func (p Policy) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", model.ErrConfigInvalid, err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", model.ErrConfigInvalid, strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.StructField() {
	case "MemoryCostKB":
		if fe.Tag() == "gte" {
			return "memory cost must be at least 1024 KB (1 MB)"
		}
		return "memory cost is too high (max 1 GB)"
	case "Iterations":
		if fe.Tag() == "gte" {
			return "iterations must be at least 1"
		}
		return "iterations too high (max 10)"
	case "Parallelism":
		if fe.Tag() == "gte" {
			return "parallelism must be at least 1"
		}
		return "parallelism too high (max 8)"
	case "OutputLength":
		if fe.Tag() == "gte" {
			return "output length must be at least 16 bytes"
		}
		return "output length too high (max 64 bytes)"
	case "Variant":
		return fmt.Sprintf("invalid argon2 variant %q, must be 'argon2id' or 'argon2i'", fe.Value())
	}
	return fe.Error()
}

// LogValue keeps the secret key out of logs.
func (p Policy) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("memory_cost_kb", p.MemoryCostKB),
		slog.Any("iterations", p.Iterations),
		slog.Any("parallelism", p.Parallelism),
		slog.Any("output_length", p.OutputLength),
		slog.String("variant", string(p.Variant)),
		slog.Bool("secret_key", len(p.SecretKey) > 0),
	)
}

func (p Policy) clone() Policy {
	if p.SecretKey != nil {
		p.SecretKey = append([]byte(nil), p.SecretKey...)
	}
	return p
}
