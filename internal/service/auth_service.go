package service

import (
	"context"
	"errors"
	"time"

	"alcyxob/studio-calendar/internal/domain"
	"alcyxob/studio-calendar/internal/repository"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = errors.New("user with this email already exists")
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
)

// RegisterInput creates a login. Client logins without a ClientID get a
// fresh client record; trainer logins may be linked to a trainer.
type RegisterInput struct {
	Name      string      `json:"name" validate:"required"`
	Email     string      `json:"email" validate:"required,email"`
	Password  string      `json:"password" validate:"required,min=8"`
	Role      domain.Role `json:"role" validate:"required,oneof=admin manager trainer client"`
	TrainerID string      `json:"trainerId,omitempty" validate:"omitempty,mongodb"`
	ClientID  string      `json:"clientId,omitempty" validate:"omitempty,mongodb"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	Me(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	GetJWTSecret() string
}

// authService implements the AuthService interface.
type authService struct {
	userRepo      repository.UserRepository
	clientRepo    repository.ClientRepository
	jwtSecret     string
	jwtExpiration time.Duration
	siteID        string
}

// NewAuthService creates a new instance of authService.
func NewAuthService(userRepo repository.UserRepository, clientRepo repository.ClientRepository, jwtSecret string, jwtExpiration time.Duration, siteID string) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	return &authService{
		userRepo:      userRepo,
		clientRepo:    clientRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		siteID:        siteID,
	}
}

// Register handles new user registration.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	// 1. Validate input
	if err := checkStruct(in); err != nil {
		return nil, err
	}

	// 2. Check if user already exists
	_, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeErr("load user", err)
	}

	// 3. Hash the password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrHashingFailed
	}

	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hashedPassword),
		Role:         in.Role,
	}

	// 4. Link the profile this login acts as
	switch in.Role {
	case domain.RoleTrainer:
		if in.TrainerID != "" {
			id, err := parseID("trainerId", in.TrainerID)
			if err != nil {
				return nil, err
			}
			user.TrainerID = &id
		}
	case domain.RoleClient:
		clientID, err := s.linkClient(ctx, in)
		if err != nil {
			return nil, err
		}
		user.ClientID = &clientID
	}

	// 5. Save the user
	userID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, storeErr("create user", err)
	}
	user.ID = userID
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) linkClient(ctx context.Context, in RegisterInput) (primitive.ObjectID, error) {
	if in.ClientID != "" {
		id, err := parseID("clientId", in.ClientID)
		if err != nil {
			return primitive.NilObjectID, err
		}
		if _, err := s.clientRepo.GetByID(ctx, id); err != nil {
			return primitive.NilObjectID, storeErr("load client", err)
		}
		return id, nil
	}
	client := &domain.Client{Name: in.Name, Email: in.Email}
	id, err := s.clientRepo.Create(ctx, client)
	if err != nil {
		return primitive.NilObjectID, storeErr("create client", err)
	}
	return id, nil
}

// Login handles user authentication and JWT generation.
func (s *authService) Login(ctx context.Context, email, password string) (token string, user *domain.User, err error) {
	// 1. Basic Input Validation
	if email == "" || password == "" {
		err = validationErr("email and password cannot be empty")
		return
	}

	// 2. Fetch user by email
	user, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrAuthenticationFailed
			return
		}
		err = storeErr("load user", err)
		return
	}

	// 3. Compare the provided password with the stored hash
	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	// 4. Generate JWT
	token, err = s.generateJWT(user)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}

	user.PasswordHash = ""
	return token, user, nil
}

func (s *authService) Me(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr("load user", err)
	}
	user.PasswordHash = ""
	return user, nil
}

// --- JWT Helper ---

// Claims is the JWT payload. It carries everything needed to rebuild the
// booking Actor without a database round trip.
type Claims struct {
	UserID    string      `json:"uid"`
	Name      string      `json:"name"`
	Role      domain.Role `json:"role"`
	SiteID    string      `json:"site"`
	TrainerID string      `json:"trainerId,omitempty"`
	ClientID  string      `json:"clientId,omitempty"`
	jwt.RegisteredClaims
}

// generateJWT creates a new JWT token for the given user.
func (s *authService) generateJWT(user *domain.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: user.ID.Hex(),
		Name:   user.Name,
		Role:   user.Role,
		SiteID: s.siteID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "studio-calendar",
		},
	}
	if user.TrainerID != nil {
		claims.TrainerID = user.TrainerID.Hex()
	}
	if user.ClientID != nil {
		claims.ClientID = user.ClientID.Hex()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
