package auth

import (
	"crypto/subtle"

	"github.com/stsysd/livery/model"
)

// AdminCapability は承認・却下を行う権限です。AdminGate からのみ取得できます。
// ゼロ値は権限を持ちません。
type AdminCapability struct {
	granted bool
}

// Granted reports whether the capability allows admin operations.
func (c AdminCapability) Granted() bool {
	return c.granted
}

// AdminGate は共有シークレットを照合して AdminCapability を発行します。
type AdminGate struct {
	secret []byte
}

// NewAdminGate creates a gate. An empty secret denies everyone.
func NewAdminGate(secret string) *AdminGate {
	return &AdminGate{secret: []byte(secret)}
}

// Grant compares the presented secret in constant time.
func (g *AdminGate) Grant(presented string) (AdminCapability, error) {
	if len(g.secret) == 0 || presented == "" {
		return AdminCapability{}, model.ErrAdminUnauthorized
	}
	if subtle.ConstantTimeCompare(g.secret, []byte(presented)) != 1 {
		return AdminCapability{}, model.ErrAdminUnauthorized
	}
	return AdminCapability{granted: true}, nil
}
