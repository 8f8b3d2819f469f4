package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"genzip/internal/caching"
	"genzip/internal/models"
	"genzip/internal/repositories"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues and validates access and refresh tokens.
type AuthService interface {
	// Token management
	GenerateTokens(ctx context.Context, user *models.User) (*models.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error)
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
	RevokeToken(ctx context.Context, token string, tokenType *string) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)

	// ParseToken verifies a bearer token for echo-jwt. HS256 tokens must
	// carry our issuer and audience; JWKS tokens are marked External.
	ParseToken(tokenString string) (*jwt.Token, error)

	// Passwords
	HashPassword(password string) (string, error)
	CheckPassword(hash, password string) bool
}

type authService struct {
	cacheSvc   caching.CacheService
	users      repositories.UserRepository
	jwtSecret  []byte
	jwks       *keyfunc.JWKS
	tokenTTL   time.Duration
	refreshTTL time.Duration
	bcryptCost int
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	UserID    string `json:"user_id"`
	CompanyID string `json:"company_id,omitempty"`
	Role      string `json:"role,omitempty"`
	TokenID   string `json:"token_id"`
	jwt.RegisteredClaims

	// External is set for tokens signed by the JWKS identity provider. Their
	// role and company claims are never trusted.
	External bool `json:"-"`
}

const (
	tokenIssuer   = "genzip-auth"
	tokenAudience = "genzip-api"
)

// NewAuthService creates a new authentication service. jwks is optional; when
// set, RS256/ES256 tokens from the external identity provider are accepted.
func NewAuthService(cacheSvc caching.CacheService, users repositories.UserRepository, jwtSecret string, jwks *keyfunc.JWKS, tokenTTL, refreshTTL time.Duration, bcryptCost int) AuthService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		cacheSvc:   cacheSvc,
		users:      users,
		jwtSecret:  []byte(jwtSecret),
		jwks:       jwks,
		tokenTTL:   tokenTTL,
		refreshTTL: refreshTTL,
		bcryptCost: bcryptCost,
	}
}

// GenerateTokens generates access and refresh tokens for a user
func (s *authService) GenerateTokens(ctx context.Context, user *models.User) (*models.TokenResponse, error) {
	now := time.Now()
	tokenID := uuid.NewString()

	companyID := ""
	if user.CompanyID != nil {
		companyID = user.CompanyID.String()
	}

	claims := TokenClaims{
		UserID:    user.ID.String(),
		CompanyID: companyID,
		Role:      user.Role,
		TokenID:   tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID.String(),
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessTokenString, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %w", err)
	}

	refreshToken := s.generateSecureToken()
	refreshTokenHash := s.hashToken(refreshToken)

	refreshTokenData := fmt.Sprintf("%s:%d", user.ID.String(), now.Add(s.refreshTTL).Unix())
	if err := s.cacheSvc.SetString(ctx, refreshKey(refreshTokenHash), refreshTokenData, s.refreshTTL); err != nil {
		log.Printf("Failed to store refresh token: %v", err)
		// Continue - the access token is still usable
	}

	return &models.TokenResponse{
		AccessToken:  accessTokenString,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.tokenTTL.Seconds()),
		RefreshToken: refreshToken,
		UserID:       user.ID.String(),
		CompanyID:    companyID,
		Role:         user.Role,
		FirstLogin:   user.FirstLogin,
		TokenID:      tokenID,
		IssuedAt:     now,
	}, nil
}

// RefreshToken rotates a refresh token. The user is reloaded so that a
// deactivated account cannot keep refreshing.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*models.TokenResponse, error) {
	cacheKey := refreshKey(s.hashToken(refreshToken))
	tokenData, err := s.cacheSvc.GetString(ctx, cacheKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read refresh token: %w", err)
	}
	if tokenData == "" {
		return nil, ErrInvalidToken
	}

	parts := strings.Split(tokenData, ":")
	if len(parts) != 2 {
		return nil, ErrInvalidToken
	}

	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if time.Now().Unix() > expiry {
		s.cacheSvc.Delete(ctx, cacheKey)
		return nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(parts[0])
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	// One-time use
	if err := s.cacheSvc.Delete(ctx, cacheKey); err != nil {
		log.Printf("Failed to delete used refresh token: %v", err)
	}

	return s.GenerateTokens(ctx, user)
}

// ValidateToken validates JWT access token
func (s *authService) ValidateToken(ctx context.Context, token string) (*TokenClaims, error) {
	jwtToken, err := s.ParseToken(token)
	if err != nil {
		return nil, err
	}

	claims, ok := jwtToken.Claims.(*TokenClaims)
	if !ok || !jwtToken.Valid {
		return nil, ErrInvalidToken
	}

	revoked, err := s.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// RevokeToken revokes an access or refresh token
func (s *authService) RevokeToken(ctx context.Context, token string, tokenType *string) error {
	if tokenType != nil && *tokenType == "refresh_token" {
		return s.cacheSvc.Delete(ctx, refreshKey(s.hashToken(token)))
	}

	claims, err := s.ValidateToken(ctx, token)
	if err != nil {
		return err
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.cacheSvc.SetString(ctx, blacklistKey(claims.TokenID), "revoked", ttl); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (s *authService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	val, err := s.cacheSvc.GetString(ctx, blacklistKey(tokenID))
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return val != "", nil
}

func (s *authService) ParseToken(tokenString string) (*jwt.Token, error) {
	unverified, _, err := jwt.NewParser().ParseUnverified(tokenString, &TokenClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if _, ok := unverified.Method.(*jwt.SigningMethodHMAC); ok {
		parser := jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(tokenIssuer),
			jwt.WithAudience(tokenAudience),
			jwt.WithExpirationRequired(),
		)
		token, err := parser.ParseWithClaims(tokenString, &TokenClaims{}, func(*jwt.Token) (interface{}, error) {
			return s.jwtSecret, nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
		return token, nil
	}

	if s.jwks == nil {
		return nil, fmt.Errorf("%w: unexpected signing method %v", ErrInvalidToken, unverified.Header["alg"])
	}
	token, err := jwt.NewParser(jwt.WithExpirationRequired()).ParseWithClaims(tokenString, &TokenClaims{}, s.jwks.Keyfunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims := token.Claims.(*TokenClaims)
	claims.External = true
	claims.Role = ""
	claims.CompanyID = ""
	return token, nil
}

func (s *authService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *authService) CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Helper methods

// generateSecureToken generates a cryptographically secure random token
func (s *authService) generateSecureToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return base64.URLEncoding.EncodeToString(bytes)
}

// hashToken creates a SHA-256 hash of the token for secure storage
func (s *authService) hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func refreshKey(hash string) string {
	return fmt.Sprintf("genzip:refresh_token:%s", hash)
}

func blacklistKey(tokenID string) string {
	return fmt.Sprintf("genzip:token_blacklist:%s", tokenID)
}
