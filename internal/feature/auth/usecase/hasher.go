package usecase

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher は秘密値（パスワード、ワンタイムコード）の不可逆ハッシュを扱います。
type Hasher interface {
	Hash(secret string) (string, error)
	// Compare は定数時間でhashとsecretを比較します。
	Compare(hash, secret string) bool
}

// BcryptHasher はコスト指定付きのbcrypt実装です。
type BcryptHasher struct {
	Cost int
}

// NewBcryptHasher はcostでハッシュ化するHasherを返します。範囲外のcostはDefaultCostにします。
func NewBcryptHasher(cost int) BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return BcryptHasher{Cost: cost}
}

// Hash はsecretをハッシュ化します。
func (h BcryptHasher) Hash(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), h.Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secret: %w", err)
	}
	return string(b), nil
}

// Compare はhashがsecretから生成されたものかを返します。
func (h BcryptHasher) Compare(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
