package usecase

import (
	"strconv"
	"time"

	"canteen/internal/domain/model"

	"github.com/golang-jwt/jwt/v4"
)

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(subjectID int64, role model.Role, ref string, now time.Time) (token string, expiresAt time.Time, err error)
}

type JWTIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func NewJWTIssuer(secret string, accessTTL time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), accessTTL: accessTTL}
}

// claims: sub=アカウントID, role=STUDENT/CANTEEN/ADMIN, ref=USN or 店舗コード
func (i *JWTIssuer) Issue(subjectID int64, role model.Role, ref string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(subjectID, 10),
		"role": string(role),
		"ref":  ref,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}
