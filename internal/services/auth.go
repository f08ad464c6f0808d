package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	redisclient "github.com/yungbote/cardiobridge-backend/internal/clients/redis"
	"github.com/yungbote/cardiobridge-backend/internal/domain"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/apierr"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/ctxutil"
	"github.com/yungbote/cardiobridge-backend/internal/pkg/logger"
	"github.com/yungbote/cardiobridge-backend/internal/repos"
)

const (
	minPasswordLength = 8
	// bcrypt reads at most 72 bytes of input; longer passwords are rejected
	// up front instead of surfacing a hashing error.
	maxPasswordLength = 72
)

type SignupInput struct {
	Email       string
	Password    string
	FullName    string
	PhoneNumber string
}

type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (domain.UserPublicView, error)
	Login(ctx context.Context, email, password string) (string, error)
	Validate(ctx context.Context, tokenString string) (*domain.User, error)
	CurrentUser(ctx context.Context, tokenString string) (domain.UserPublicView, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	Logout(ctx context.Context) error
	GetAccessTTL() time.Duration
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	revocations  redisclient.RevocationList
	jwtSecretKey string
	accessTTL    time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	revocations redisclient.RevocationList,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:           db,
		log:          serviceLog,
		userRepo:     userRepo,
		revocations:  revocations,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
	}
}

func (as *authService) Signup(ctx context.Context, in SignupInput) (domain.UserPublicView, error) {
	email := repos.NormalizeEmail(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	phone := strings.TrimSpace(in.PhoneNumber)

	if fields := validateSignup(email, in.Password, fullName); len(fields) > 0 {
		return domain.UserPublicView{}, apierr.New(http.StatusUnprocessableEntity, apierr.CodeValidationError,
			fmt.Errorf("invalid fields: %s", strings.Join(fields, ", ")))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.UserPublicView{}, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		PhoneNumber:  phone,
	}
	if err := as.userRepo.Create(ctx, nil, user); err != nil {
		if errors.Is(err, repos.ErrDuplicateEmail) {
			return domain.UserPublicView{}, apierr.New(http.StatusConflict, apierr.CodeDuplicateEmail, err)
		}
		as.log.Error("Failed to create user", "error", err)
		return domain.UserPublicView{}, fmt.Errorf("create user: %w", err)
	}

	as.log.Info("User registered", "user_id", user.ID.String())
	return user.PublicView(), nil
}

func validateSignup(email, password, fullName string) []string {
	var fields []string
	if email == "" {
		fields = append(fields, "email")
	} else if parsed, err := mail.ParseAddress(email); err != nil || parsed.Address != email {
		// A bare address only; display-name forms would otherwise be stored
		// verbatim as the email.
		fields = append(fields, "email")
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		fields = append(fields, "password")
	}
	if fullName == "" {
		fields = append(fields, "full_name")
	}
	return fields
}

// Login deliberately reports the same error for unknown email and wrong
// password so callers cannot enumerate accounts.
func (as *authService) Login(ctx context.Context, email, password string) (string, error) {
	invalid := apierr.New(http.StatusUnauthorized, apierr.CodeInvalidCredentials,
		errors.New("incorrect email or password"))

	email = repos.NormalizeEmail(email)
	if email == "" || password == "" {
		return "", invalid
	}

	user, err := as.userRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			as.log.Error("Failed to look up user for login", "error", err)
		}
		return "", invalid
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", invalid
	}

	token, err := as.generateAccessToken(user)
	if err != nil {
		as.log.Error("Failed to sign access token", "error", err)
		return "", fmt.Errorf("sign access token: %w", err)
	}

	as.log.Info("User logged in", "user_id", user.ID.String())
	return token, nil
}

func (as *authService) generateAccessToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.New().String(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

// Validate verifies signature and expiry and resolves the subject. A token
// whose subject no longer exists is reported as invalid, not as missing, so
// the response does not reveal account state.
func (as *authService) Validate(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := as.parseClaims(tokenString)
	if err != nil {
		return nil, err
	}

	if as.revocations != nil {
		revoked, rErr := as.revocations.IsRevoked(ctx, claims.ID)
		if rErr != nil {
			as.log.Warn("Revocation check failed, rejecting token", "error", rErr)
			return nil, apierr.New(http.StatusUnauthorized, apierr.CodeTokenInvalid, errors.New("token rejected"))
		}
		if revoked {
			return nil, apierr.New(http.StatusUnauthorized, apierr.CodeTokenInvalid, errors.New("token revoked"))
		}
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apierr.New(http.StatusUnauthorized, apierr.CodeTokenInvalid, errors.New("malformed subject"))
	}
	user, err := as.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			as.log.Error("Failed to load token subject", "error", err)
		}
		return nil, apierr.New(http.StatusUnauthorized, apierr.CodeTokenInvalid, errors.New("invalid token"))
	}
	return user, nil
}

func (as *authService) parseClaims(tokenString string) (*jwt.RegisteredClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, apierr.New(http.StatusUnauthorized, apierr.CodeTokenInvalid, errors.New("missing token"))
	}
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apierr.New(http.StatusUnauthorized, apierr.CodeTokenExpired, errors.New("token expired"))
		}
		return nil, apierr.New(http.StatusUnauthorized, apierr.CodeTokenInvalid, errors.New("invalid token"))
	}
	if !parsed.Valid {
		return nil, apierr.New(http.StatusUnauthorized, apierr.CodeTokenInvalid, errors.New("invalid token"))
	}
	return claims, nil
}

func (as *authService) CurrentUser(ctx context.Context, tokenString string) (domain.UserPublicView, error) {
	user, err := as.Validate(ctx, tokenString)
	if err != nil {
		return domain.UserPublicView{}, err
	}
	return user.PublicView(), nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	user, err := as.Validate(ctx, tokenString)
	if err != nil {
		return ctx, err
	}
	claims, err := as.parseClaims(tokenString)
	if err != nil {
		return ctx, err
	}
	rd := &ctxutil.RequestData{
		TokenString: tokenString,
		TokenID:     claims.ID,
		UserID:      user.ID,
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

// Logout adds the presented token to the denylist for its remaining
// lifetime. Without Redis configured there is no server-side revocation and
// logout is a client-side discard; the token stays valid until expiry.
func (as *authService) Logout(ctx context.Context) error {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return apierr.New(http.StatusUnauthorized, apierr.CodeTokenInvalid, errors.New("missing token"))
	}
	if as.revocations == nil {
		as.log.Warn("Logout without revocation list configured; token remains valid until expiry")
		return nil
	}
	claims, err := as.parseClaims(rd.TokenString)
	if err != nil {
		return err
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := as.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		as.log.Error("Failed to revoke token", "error", err)
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
