package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"food-ordering/logger"
	"food-ordering/models"
	"food-ordering/repository"
)

// Hasher returns a bcrypt hash function with the given cost.
func Hasher(cost int) func(password string) (string, error) {
	return func(password string) (string, error) {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return "", err
		}
		return string(hashed), nil
	}
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type AuthService struct {
	db       *repository.DatabaseRepository
	sessions *repository.SessionRepository
	hash     func(string) (string, error)
	validate *validator.Validate
	log      logger.Logger
}

func NewAuthService(db *repository.DatabaseRepository, sessions *repository.SessionRepository, bcryptCost int, log logger.Logger) *AuthService {
	return &AuthService{
		db:       db,
		sessions: sessions,
		hash:     Hasher(bcryptCost),
		validate: validator.New(),
		log:      log,
	}
}

// Login checks the credentials, matching the email case-insensitively, and
// records the session.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.UserRef, error) {
	db, err := s.db.Load(ctx)
	if err != nil {
		return models.UserRef{}, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	var found *models.User
	for i := range db.Users {
		if strings.ToLower(db.Users[i].Email) == email {
			found = &db.Users[i]
			break
		}
	}
	if found == nil {
		return models.UserRef{}, models.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password)); err != nil {
		return models.UserRef{}, models.ErrInvalidCredentials
	}

	if _, err := s.sessions.Start(ctx, found.ID, time.Now().UTC()); err != nil {
		return models.UserRef{}, err
	}
	s.log.Info("user_login", "user signed in", map[string]any{"user_id": found.ID, "role": found.Role})
	return found.Ref(), nil
}

// Logout ends the user's session. Every token issued to the user stops
// being honoured.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.sessions.Delete(ctx, userID); err != nil {
		return err
	}
	s.log.Info("user_logout", "user signed out", map[string]any{"user_id": userID})
	return nil
}

// CurrentUser returns the signed-in user behind a token for userID issued at
// issuedAt. It is nil when the user has no session, the token predates the
// session, or the user no longer exists.
func (s *AuthService) CurrentUser(ctx context.Context, userID string, issuedAt time.Time) (*models.UserRef, error) {
	sess, err := s.sessions.Load(ctx, userID)
	if err != nil || sess == nil {
		return nil, err
	}
	// Token timestamps carry whole seconds.
	if issuedAt.Before(sess.At.Truncate(time.Second)) {
		return nil, nil
	}
	ref, err := s.FindUser(ctx, userID)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// RequireRole returns the current user when their role is one of roles.
func (s *AuthService) RequireRole(ctx context.Context, userID string, issuedAt time.Time, roles ...models.UserRole) (models.UserRef, error) {
	u, err := s.CurrentUser(ctx, userID, issuedAt)
	if err != nil {
		return models.UserRef{}, err
	}
	if u == nil {
		return models.UserRef{}, models.ErrUnauthorized
	}
	if len(roles) == 0 {
		return *u, nil
	}
	for _, r := range roles {
		if u.Role == r {
			return *u, nil
		}
	}
	return models.UserRef{}, models.ErrUnauthorized
}

func (s *AuthService) FindUser(ctx context.Context, id string) (models.UserRef, error) {
	db, err := s.db.Load(ctx)
	if err != nil {
		return models.UserRef{}, err
	}
	u, ok := db.FindUser(id)
	if !ok {
		return models.UserRef{}, models.ErrUserNotFound
	}
	return u.Ref(), nil
}

// RegisterCustomer creates a customer account and signs it in.
func (s *AuthService) RegisterCustomer(ctx context.Context, in RegisterInput) (models.UserRef, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return models.UserRef{}, validationError(err)
	}
	hashed, err := s.hash(in.Password)
	if err != nil {
		return models.UserRef{}, err
	}

	user := models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hashed,
		Role:         models.RoleCustomer,
		CreatedAt:    time.Now().UTC(),
	}
	err = s.db.Update(ctx, func(db *models.Database) error {
		for _, u := range db.Users {
			if strings.ToLower(u.Email) == in.Email {
				return models.ErrEmailTaken
			}
		}
		db.Users = append(db.Users, user)
		return nil
	})
	if err != nil {
		return models.UserRef{}, err
	}

	if _, err := s.sessions.Start(ctx, user.ID, time.Now().UTC()); err != nil {
		return models.UserRef{}, err
	}
	s.log.Info("user_registered", "customer account created", map[string]any{"user_id": user.ID})
	return user.Ref(), nil
}

// validationError converts validator failures into a ValidationError naming
// the offending JSON fields.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, jsonName(fe.Field()))
	}
	return &models.ValidationError{Fields: fields}
}

func jsonName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
