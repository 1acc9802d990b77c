package domain

// CredentialTier selects which bearer token a CMS call is issued with.
type CredentialTier string

const (
	TierUser    CredentialTier = "user"    // the session's own token
	TierService CredentialTier = "service" // elevated API token held by the adapter
)

// Credential is passed with every repository call. For TierService the Token
// field is empty; the adapter substitutes its configured API token.
type Credential struct {
	Tier  CredentialTier
	Token string
}

func UserCredential(token string) Credential {
	return Credential{Tier: TierUser, Token: token}
}

func ServiceCredential() Credential {
	return Credential{Tier: TierService}
}
