package services

import (
	"errors"
	"strconv"
	"time"

	"feedboard/app/apperr"
	"feedboard/app/models"
	"feedboard/app/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// SignupInput is the input shape for account creation.
type SignupInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=5"`
	Name     string `json:"name" validate:"required"`
}

// AuthService issues and verifies identity tokens and manages accounts.
type AuthService struct {
	users    repositories.UserRepository
	secret   []byte
	tokenTTL time.Duration
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService signing tokens with secret.
func NewAuthService(users repositories.UserRepository, secret []byte, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &AuthService{users: users, secret: secret, tokenTTL: tokenTTL, log: log}
}

// Signup validates the input, hashes the password, and creates the user.
// A taken email is reported as a validation failure.
func (s *AuthService) Signup(in SignupInput) (*models.User, error) {
	if err := validateSignupInput(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "could not hash password", err)
	}

	user := &models.User{
		Email:    in.Email,
		Password: string(hash),
		Name:     in.Name,
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, apperr.NewValidation("invalid input", "email address already exists")
		}
		return nil, apperr.Wrap(apperr.Persistence, "could not create user", err)
	}

	out := user.Sanitized()
	return &out, nil
}

// Login checks the credentials and returns a signed token plus the user id.
func (s *AuthService) Login(email, password string) (string, int, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", 0, apperr.New(apperr.Auth, "user not found")
		}
		return "", 0, apperr.Wrap(apperr.Persistence, "could not fetch user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", 0, apperr.New(apperr.Auth, "password incorrect")
	}

	now := time.Now()
	tok, err := jwt.NewBuilder().
		Claim("userId", strconv.Itoa(user.ID)).
		Claim("email", user.Email).
		IssuedAt(now).
		Expiration(now.Add(s.tokenTTL)).
		Build()
	if err != nil {
		return "", 0, apperr.Wrap(apperr.Persistence, "could not build token", err)
	}
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, s.secret))
	if err != nil {
		return "", 0, apperr.Wrap(apperr.Persistence, "could not sign token", err)
	}

	return string(signed), user.ID, nil
}

// Profile returns the caller's own account, password cleared. An unknown
// caller id means the token outlived the account and reads as an auth
// failure.
func (s *AuthService) Profile(callerID int) (*models.User, error) {
	user, err := s.users.GetByID(callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.New(apperr.Auth, "invalid user")
		}
		return nil, apperr.Wrap(apperr.Persistence, "could not fetch user", err)
	}
	out := user.Sanitized()
	return &out, nil
}

// UpdateStatus replaces the caller's status line and returns the updated
// account.
func (s *AuthService) UpdateStatus(callerID int, status string) (*models.User, error) {
	user, err := s.users.GetByID(callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperr.New(apperr.Auth, "invalid user")
		}
		return nil, apperr.Wrap(apperr.Persistence, "could not fetch user", err)
	}
	user.Status = status
	if err := s.users.Update(user); err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "could not update user", err)
	}
	out := user.Sanitized()
	return &out, nil
}

// VerifyToken validates a bearer token and returns the caller id.
func (s *AuthService) VerifyToken(token string) (int, error) {
	tok, err := jwt.Parse([]byte(token), jwt.WithKey(jwa.HS256, s.secret), jwt.WithValidate(true))
	if err != nil {
		return 0, apperr.New(apperr.Auth, "not authenticated")
	}

	raw, ok := tok.Get("userId")
	if !ok {
		return 0, apperr.New(apperr.Auth, "not authenticated")
	}
	str, ok := raw.(string)
	if !ok {
		return 0, apperr.New(apperr.Auth, "not authenticated")
	}
	id, err := strconv.Atoi(str)
	if err != nil || id < 1 {
		return 0, apperr.New(apperr.Auth, "not authenticated")
	}
	return id, nil
}

func validateSignupInput(in SignupInput) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.NewValidation("invalid input")
	}
	data := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		data = append(data, fieldMessage(fe))
	}
	return apperr.NewValidation("invalid input", data...)
}
