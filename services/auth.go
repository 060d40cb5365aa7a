package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	apperrors "payments-dashboard/errors"
	"payments-dashboard/models"
)

const tokenLifetime = 24 * time.Hour

// AuthService issues and verifies dashboard credentials. It sits outside
// the reconciliation core; the engine itself never deals with users.
type AuthService struct {
	db        *sql.DB
	jwtSecret []byte
}

func NewAuthService(database *sql.DB, jwtSecret string) *AuthService {
	return &AuthService{db: database, jwtSecret: []byte(jwtSecret)}
}

// Register creates a dashboard user with a bcrypt-hashed password
func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	query := `INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id, username, created_at`
	row := s.db.QueryRowContext(ctx, query, username, hash)

	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.NewConflictError("Username already exists")
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	user.PasswordHash = hash

	return &user, nil
}

// Login verifies credentials and issues a signed token
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	query := `SELECT id, username, password_hash, created_at FROM users WHERE username = $1`
	row := s.db.QueryRowContext(ctx, query, username)

	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return "", nil, apperrors.NewUnauthorizedError("Invalid credentials")
		}
		return "", nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return "", nil, apperrors.NewUnauthorizedError("Invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  fmt.Sprintf("%d", user.ID),
		"username": user.Username,
		"exp":      time.Now().Add(tokenLifetime).Unix(),
		"iat":      time.Now().Unix(),
	})
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}

	return signed, &user, nil
}
