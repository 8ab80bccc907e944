package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Validation codes, reported in this order.
const (
	CodeInvalidEmail                    = "InvalidEmail"
	CodeDuplicateUserName               = "DuplicateUserName"
	CodePasswordTooShort                = "PasswordTooShort"
	CodePasswordRequiresNonAlphanumeric = "PasswordRequiresNonAlphanumeric"
	CodePasswordRequiresDigit           = "PasswordRequiresDigit"
	CodePasswordRequiresLower           = "PasswordRequiresLower"
	CodePasswordRequiresUpper           = "PasswordRequiresUpper"
)

// PasswordPolicy lists the rules a new password must satisfy.
type PasswordPolicy struct {
	RequiredLength         int
	RequireNonAlphanumeric bool
	RequireDigit           bool
	RequireLowercase       bool
	RequireUppercase       bool
}

// DefaultPasswordPolicy requires six characters including a digit, a lower
// and an upper case letter, and a symbol.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		RequiredLength:         6,
		RequireNonAlphanumeric: true,
		RequireDigit:           true,
		RequireLowercase:       true,
		RequireUppercase:       true,
	}
}

type ValidationError struct {
	Code        string
	Description string
}

// ValidationErrors is returned by Register when the request breaks one or
// more rules. It matches ErrValidation with errors.Is.
type ValidationErrors struct {
	Errors []ValidationError
}

func (v *ValidationErrors) Error() string {
	descriptions := make([]string, len(v.Errors))
	for i, e := range v.Errors {
		descriptions[i] = e.Description
	}
	return fmt.Sprintf("%v: %s", ErrValidation, strings.Join(descriptions, " "))
}

func (v *ValidationErrors) Unwrap() error {
	return ErrValidation
}

func (v *ValidationErrors) add(code string, format string, args ...any) {
	v.Errors = append(v.Errors, ValidationError{
		Code:        code,
		Description: fmt.Sprintf(format, args...),
	})
}

// Register creates an account for email. It fails with *ValidationErrors
// when the email is malformed or taken, or the password breaks the policy.
func (s *Service) Register(
	email string,
	password string,
) error {
	verr, err := s.validate(email, password)
	if err != nil {
		return err
	}
	if verr != nil {
		return verr
	}

	err = s.insertAccount(User{Email: email, Password: password})
	if errors.Is(err, ErrEmailExists) {
		// lost a race with a concurrent registration
		verr = &ValidationErrors{}
		verr.add(CodeDuplicateUserName, "Username '%s' is already taken.", email)
		return verr
	}
	if err != nil {
		return err
	}

	s.log.Info("registered account", "email", email)
	return nil
}

func (s *Service) validate(
	email string,
	password string,
) (
	*ValidationErrors,
	error,
) {
	verr := &ValidationErrors{}

	if !validEmail(email) {
		verr.add(CodeInvalidEmail, "Email '%s' is invalid.", email)
		return verr, nil
	}

	exists, err := s.identityStore.EmailExists(email)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to check email: %v", ErrInternal, err)
	}
	if exists {
		verr.add(CodeDuplicateUserName, "Username '%s' is already taken.", email)
	}

	s.policy.check(password, verr)

	if len(verr.Errors) == 0 {
		return nil, nil
	}
	return verr, nil
}

func (p PasswordPolicy) check(password string, verr *ValidationErrors) {
	var hasNonAlphanumeric, hasDigit, hasLower, hasUpper bool
	for _, c := range password {
		switch {
		case c >= '0' && c <= '9':
			hasDigit = true
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case !unicode.IsLetter(c) && !unicode.IsDigit(c):
			hasNonAlphanumeric = true
		}
	}

	if len([]rune(password)) < p.RequiredLength {
		verr.add(CodePasswordTooShort, "Passwords must be at least %d characters.", p.RequiredLength)
	}
	if p.RequireNonAlphanumeric && !hasNonAlphanumeric {
		verr.add(CodePasswordRequiresNonAlphanumeric, "Passwords must have at least one non alphanumeric character.")
	}
	if p.RequireDigit && !hasDigit {
		verr.add(CodePasswordRequiresDigit, "Passwords must have at least one digit ('0'-'9').")
	}
	if p.RequireLowercase && !hasLower {
		verr.add(CodePasswordRequiresLower, "Passwords must have at least one lowercase ('a'-'z').")
	}
	if p.RequireUppercase && !hasUpper {
		verr.add(CodePasswordRequiresUpper, "Passwords must have at least one uppercase ('A'-'Z').")
	}
}

// validEmail accepts exactly one '@' with text on both sides.
func validEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	return at > 0 &&
		at == strings.LastIndexByte(email, '@') &&
		at < len(email)-1 &&
		strings.TrimSpace(email) == email
}

func (s *Service) insertAccount(user User) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.passwordMode.Cost())
	if err != nil {
		return fmt.Errorf("%w: failed to hash password: %v", ErrInternal, err)
	}

	err = s.identityStore.InsertIdentity(Account{
		ID:             uuid.NewString(),
		Email:          user.Email,
		Secret:         hash,
		EmailConfirmed: user.EmailConfirmed,
		Claims:         user.Claims,
	})
	if errors.Is(err, ErrEmailExists) {
		return err
	}
	if err != nil {
		return fmt.Errorf("%w: failed to insert account: %v", ErrInternal, err)
	}
	return nil
}
