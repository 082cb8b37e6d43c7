package services

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "studymate/internal/errors"
	"studymate/internal/models"
)

// studentService handles registration, login and profile logic.
type studentService struct {
	db         *gorm.DB
	bcryptCost int
}

// NewStudentService creates a new StudentServicer.
func NewStudentService(db *gorm.DB) StudentServicer {
	return &studentService{db: db, bcryptCost: bcrypt.DefaultCost}
}

// Register creates an account. Username and email must both be unused.
func (s *studentService) Register(fullName, username, email, password string) (*models.Student, error) {
	fullName = strings.TrimSpace(fullName)
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if fullName == "" || username == "" || email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "full_name, username, email and password are required")
	}

	taken, err := s.identityTaken(username, email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.ErrDuplicateAccount
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	student := &models.Student{
		Username:        username,
		Email:           email,
		PasswordHash:    string(hashedPassword),
		FullName:        fullName,
		ThemePreference: models.ThemeLight,
	}

	if err := s.db.Create(student).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateAccount
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return student, nil
}

// Authenticate checks a username and password. Unknown users and wrong
// passwords produce the same error.
func (s *studentService) Authenticate(username, password string) (*models.Student, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "username and password are required")
	}

	var student models.Student
	if err := s.db.Where("username = ?", username).First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(student.PasswordHash), []byte(password)) != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	return &student, nil
}

// GetProfile retrieves a student by ID
func (s *studentService) GetProfile(studentID uint) (*models.Student, error) {
	var student models.Student
	if err := s.db.First(&student, studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &student, nil
}

// UpdateProfile replaces the profile fields. The uniqueness check ignores the
// student's own row so resubmitting an unchanged username is allowed.
func (s *studentService) UpdateProfile(studentID uint, update ProfileUpdate) (*models.Student, error) {
	update.FullName = strings.TrimSpace(update.FullName)
	update.Username = strings.TrimSpace(update.Username)
	update.Email = strings.ToLower(strings.TrimSpace(update.Email))

	if update.FullName == "" || update.Username == "" || update.Email == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "full_name, username and email are required")
	}

	student, err := s.GetProfile(studentID)
	if err != nil {
		return nil, err
	}

	taken, err := s.identityTaken(update.Username, update.Email, studentID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperrors.ErrDuplicateAccount
	}

	err = s.db.Model(student).Select("full_name", "username", "email", "bio", "profile_picture").
		Updates(models.Student{
			FullName:       update.FullName,
			Username:       update.Username,
			Email:          update.Email,
			Bio:            update.Bio,
			ProfilePicture: update.ProfilePicture,
		}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateAccount
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetProfile(studentID)
}

// UpdateTheme stores the theme preference without touching other fields.
func (s *studentService) UpdateTheme(studentID uint, theme models.Theme) error {
	if !theme.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "theme_preference must be light or dark")
	}

	student, err := s.GetProfile(studentID)
	if err != nil {
		return err
	}

	if err := s.db.Model(student).Update("theme_preference", theme).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// identityTaken reports whether another account already uses the username
// or email. exclude is the caller's own id, or 0 at registration.
func (s *studentService) identityTaken(username, email string, exclude uint) (bool, error) {
	var count int64
	err := s.db.Model(&models.Student{}).
		Where("(username = ? OR email = ?) AND id <> ?", username, email, exclude).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}
