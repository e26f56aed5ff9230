package service

import (
	"time"

	"go-task-manager/internal/model"
)

// AuthService orchestrates login, refresh and logout. It keeps no state of
// its own: credentials live in the principal store, session validity in the
// refresh token store, and token authenticity in the codec.
type AuthService struct {
	codec      *TokenCodec
	principals *PrincipalStore
	sessions   *RefreshTokenStore
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(
	codec *TokenCodec,
	principals *PrincipalStore,
	sessions *RefreshTokenStore,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) *AuthService {
	return &AuthService{
		codec:      codec,
		principals: principals,
		sessions:   sessions,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *AuthService) Login(username string, password string) (model.TokenPair, error) {
	user, err := s.principals.Verify(username, password)
	if err != nil {
		return model.TokenPair{}, err
	}

	return s.issueTokenPair(user)
}

// Refresh rotates the session: the presented token must be a valid refresh
// token AND the store's current one for its subject. On success the old
// token is superseded immediately, even though its signature stays valid
// until expiry — the store, not the signature, is the source of truth for
// which session is current.
func (s *AuthService) Refresh(refreshToken string) (model.TokenPair, error) {
	claims, err := s.codec.Parse(refreshToken, TokenTypeRefresh)
	if err != nil {
		return model.TokenPair{}, model.ErrInvalidToken
	}

	user, exists := s.principals.Find(claims.Username)
	if !exists {
		return model.TokenPair{}, model.ErrInvalidToken
	}

	if !s.sessions.IsValid(user.Username, refreshToken) {
		return model.TokenPair{}, model.ErrInvalidToken
	}

	return s.issueTokenPair(user)
}

func (s *AuthService) Logout(username string) {
	s.sessions.Revoke(username)
}

func (s *AuthService) GetUser(username string) (model.AuthUser, error) {
	user, exists := s.principals.Find(username)
	if !exists {
		return model.AuthUser{}, model.ErrUserNotFound
	}

	return model.AuthUser{Username: user.Username, Role: user.Role}, nil
}

// ValidateAccessToken is the inbound gate used by the auth middleware.
func (s *AuthService) ValidateAccessToken(tokenString string) (*model.AuthClaims, error) {
	return s.codec.Parse(tokenString, TokenTypeAccess)
}

func (s *AuthService) issueTokenPair(user model.User) (model.TokenPair, error) {
	accessToken, err := s.codec.Issue(user.Username, user.Role, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return model.TokenPair{}, err
	}

	refreshToken, err := s.codec.Issue(user.Username, user.Role, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return model.TokenPair{}, err
	}

	s.sessions.Store(user.Username, refreshToken)

	return model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
		User:         model.AuthUser{Username: user.Username, Role: user.Role},
	}, nil
}
