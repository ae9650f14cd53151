package fauth

import (
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer is the `iss` claim carried by every access token.
const Issuer = "fina"

// UserClaims is a flat view of an access token payload.
// Values returned by ParseUnverified must not be used for security decisions.
type UserClaims struct {
	Subject string
	Email   string
	Iss     string
	ID      string
	Iat     int64
	Exp     int64
}

// UserID parses the subject back into the numeric user id.
func (uc *UserClaims) UserID() (int64, error) {
	id, err := strconv.ParseInt(uc.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("subject %q is not a user id: %w", uc.Subject, err)
	}
	return id, nil
}

// ParseUnverified extracts claims from a token without checking its
// signature. Useful for tooling and tests only.
func ParseUnverified(tokenStr string) (*UserClaims, error) {
	var mc jwt.MapClaims
	parser := new(jwt.Parser)
	if _, _, err := parser.ParseUnverified(tokenStr, &mc); err != nil {
		return nil, err
	}
	return FromMapClaims(mc), nil
}

// FromMapClaims maps raw claims into UserClaims. It tolerates both string and
// numeric forms of `sub`, `iat` and `exp`.
func FromMapClaims(mc jwt.MapClaims) *UserClaims {
	uc := &UserClaims{}

	if sub, ok := mc["sub"]; ok {
		switch v := sub.(type) {
		case string:
			uc.Subject = v
		case float64:
			uc.Subject = strconv.FormatInt(int64(v), 10)
		default:
			uc.Subject = fmt.Sprintf("%v", v)
		}
	}

	if email, ok := mc["email"].(string); ok {
		uc.Email = email
	}
	if iss, ok := mc["iss"].(string); ok {
		uc.Iss = iss
	}
	if jti, ok := mc["jti"].(string); ok {
		uc.ID = jti
	}

	uc.Iat = numericClaim(mc["iat"])
	uc.Exp = numericClaim(mc["exp"])

	return uc
}

// ToClaims converts UserClaims into jwt.MapClaims for signing, omitting
// empty fields.
func ToClaims(uc *UserClaims) jwt.MapClaims {
	mc := jwt.MapClaims{}
	if uc.Subject != "" {
		mc["sub"] = uc.Subject
	}
	if uc.Email != "" {
		mc["email"] = uc.Email
	}
	if uc.Iss != "" {
		mc["iss"] = uc.Iss
	}
	if uc.ID != "" {
		mc["jti"] = uc.ID
	}
	if uc.Iat != 0 {
		mc["iat"] = uc.Iat
	}
	if uc.Exp != 0 {
		mc["exp"] = uc.Exp
	}
	return mc
}

func numericClaim(v any) int64 {
	switch n := v.(type) {
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}
