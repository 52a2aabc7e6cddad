package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/devtrail/devtrail-backend/internal/apperr"
	"github.com/devtrail/devtrail-backend/internal/logger"
	"github.com/devtrail/devtrail-backend/internal/normalization"
	"github.com/devtrail/devtrail-backend/internal/repos"
	"github.com/devtrail/devtrail-backend/internal/requestdata"
	"github.com/devtrail/devtrail-backend/internal/types"
)

// JWTClaims is the access token payload. Subject carries the user id.
type JWTClaims struct {
	IsAdmin bool `json:"is_admin"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthService interface {
	RegisterUser(ctx context.Context, in RegisterInput) (*types.User, error)
	LoginUser(ctx context.Context, email, password string) (accessToken, refreshToken string, err error)
	RefreshUser(ctx context.Context, refreshToken string) (newAccess, newRefresh string, err error)
	LogoutUser(ctx context.Context, accessToken string) error
	// SetContextFromToken validates the access token and attaches the
	// authenticated principal to the context for handlers to read.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	jwtSecretKey  string
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	refreshTTL time.Duration,
) AuthService {
	serviceLog := baseLog.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (as *authService) RegisterUser(ctx context.Context, in RegisterInput) (*types.User, error) {
	username := normalization.Username(in.Username)
	email := normalization.Email(in.Email)
	if username == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("username, email and password are required: %w", apperr.ErrValidation)
	}
	if len(in.Password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters: %w", apperr.ErrValidation)
	}

	taken, err := as.userRepo.UsernameExists(ctx, nil, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("username %q is taken: %w", username, apperr.ErrConflict)
	}
	taken, err = as.userRepo.EmailExists(ctx, nil, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return nil, fmt.Errorf("email %q is taken: %w", email, apperr.ErrConflict)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &types.User{
		ID:         uuid.New(),
		Username:   username,
		Email:      email,
		Password:   string(hashed),
		Avatar:     "default.jpg",
		DateJoined: time.Now().UTC(),
	}
	if _, err := as.userRepo.Create(ctx, nil, []*types.User{user}); err != nil {
		as.log.Error("RegisterUser failed", "error", err, "email", email)
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (as *authService) LoginUser(ctx context.Context, email, password string) (string, string, error) {
	email = normalization.Email(email)
	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return "", "", fmt.Errorf("load user by email: %w", err)
	}
	if user == nil {
		return "", "", fmt.Errorf("invalid email or password: %w", apperr.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", fmt.Errorf("invalid email or password: %w", apperr.ErrUnauthorized)
	}

	var accessToken, refreshToken string
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := as.userTokenRepo.DeleteExpired(ctx, tx, time.Now()); err != nil {
			as.log.Warn("failed to prune expired tokens", "error", err)
		}
		tok, genErr := as.generateAccessToken(user)
		if genErr != nil {
			return fmt.Errorf("generate access token: %w", genErr)
		}
		accessToken = tok
		refreshToken = uuid.New().String()
		userToken := &types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, err := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{userToken}); err != nil {
			return fmt.Errorf("create user token: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (as *authService) RefreshUser(ctx context.Context, refreshToken string) (string, string, error) {
	if refreshToken == "" {
		return "", "", fmt.Errorf("refresh token is required: %w", apperr.ErrUnauthorized)
	}

	var newAccess, newRefresh string
	err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := as.userTokenRepo.GetByRefreshToken(ctx, tx, refreshToken)
		if err != nil {
			return fmt.Errorf("load refresh token: %w", err)
		}
		if existing == nil {
			return fmt.Errorf("unknown refresh token: %w", apperr.ErrUnauthorized)
		}
		if existing.ExpiresAt.Before(time.Now()) {
			if dErr := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{existing.ID}); dErr != nil {
				as.log.Warn("failed to delete expired token", "error", dErr)
			}
			return fmt.Errorf("refresh token expired: %w", apperr.ErrUnauthorized)
		}

		user, err := as.userRepo.GetByID(ctx, tx, existing.UserID)
		if err != nil {
			return fmt.Errorf("load user for refresh: %w", err)
		}
		if user == nil {
			return fmt.Errorf("no user for refresh token: %w", apperr.ErrUnauthorized)
		}

		tok, genErr := as.generateAccessToken(user)
		if genErr != nil {
			return fmt.Errorf("generate access token: %w", genErr)
		}
		newAccess = tok
		newRefresh = uuid.New().String()
		userToken := &types.UserToken{
			ID:           uuid.New(),
			UserID:       user.ID,
			AccessToken:  newAccess,
			RefreshToken: newRefresh,
			ExpiresAt:    time.Now().Add(as.refreshTTL),
		}
		if _, err := as.userTokenRepo.Create(ctx, tx, []*types.UserToken{userToken}); err != nil {
			return fmt.Errorf("create user token: %w", err)
		}
		if err := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{existing.ID}); err != nil {
			return fmt.Errorf("remove old refresh token: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", "", err
	}
	return newAccess, newRefresh, nil
}

func (as *authService) LogoutUser(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return fmt.Errorf("access token is required: %w", apperr.ErrUnauthorized)
	}
	return as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := as.userTokenRepo.GetByAccessToken(ctx, tx, accessToken)
		if err != nil {
			return fmt.Errorf("load user token: %w", err)
		}
		if found == nil {
			return nil
		}
		if err := as.userTokenRepo.DeleteByIDs(ctx, tx, []uuid.UUID{found.ID}); err != nil {
			return fmt.Errorf("delete user token: %w", err)
		}
		return nil
	})
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("parse token: %w", apperr.ErrUnauthorized)
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired token: %w", apperr.ErrUnauthorized)
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", apperr.ErrUnauthorized)
	}

	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		IsAdmin:     claims.IsAdmin,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}

func (as *authService) generateAccessToken(user *types.User) (string, error) {
	claims := JWTClaims{
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}
