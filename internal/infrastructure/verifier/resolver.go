package verifier

import (
	"coin-server/internal/domain/purchase"
)

// Resolver プラットフォームごとのVerifierを解決する
type Resolver struct {
	verifiers map[purchase.Platform]purchase.Verifier
}

// NewResolver 新しいResolverを作成
func NewResolver(apple, google, web purchase.Verifier) *Resolver {
	return &Resolver{
		verifiers: map[purchase.Platform]purchase.Verifier{
			purchase.PlatformApple:  apple,
			purchase.PlatformGoogle: google,
			purchase.PlatformWeb:    web,
		},
	}
}

// Resolve プラットフォームに対応するVerifierを返す
func (r *Resolver) Resolve(platform purchase.Platform) (purchase.Verifier, error) {
	v, ok := r.verifiers[platform]
	if !ok || v == nil {
		return nil, purchase.ErrUnsupportedPlatform
	}
	return v, nil
}
