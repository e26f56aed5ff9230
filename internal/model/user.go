package model

type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role"`
}

type AuthUser struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type AuthClaims struct {
	Username string `json:"sub"`
	Role     string `json:"role"`
	Type     string `json:"typ"`
	TokenID  string `json:"jti"`
}

type TokenPair struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	TokenType    string   `json:"token_type"`
	ExpiresIn    int64    `json:"expires_in"`
	User         AuthUser `json:"user"`
}
