package screen

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"firelist/internal/service"
)

// RouteLogin is where a successful sign-up navigates.
const RouteLogin = "login"

// Navigator moves the user to another screen.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(route string) { f(route) }

// SignUpScreen is the account creation screen.
type SignUpScreen struct {
	svc service.Service
	log *zap.Logger
	nav Navigator

	mu       sync.Mutex
	email    string
	password string
	errText  string
}

// NewSignUpScreen creates a sign-up screen that navigates with nav on success.
func NewSignUpScreen(svc service.Service, log *zap.Logger, nav Navigator) *SignUpScreen {
	return &SignUpScreen{svc: svc, log: log, nav: nav}
}

// SetEmail sets the email input.
func (s *SignUpScreen) SetEmail(email string) {
	s.mu.Lock()
	s.email = email
	s.mu.Unlock()
}

// SetPassword sets the password input.
func (s *SignUpScreen) SetPassword(password string) {
	s.mu.Lock()
	s.password = password
	s.mu.Unlock()
}

// ErrorText returns the message shown under the form, empty when there is none.
func (s *SignUpScreen) ErrorText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errText
}

// Submit asks the auth provider to create the account. Inputs are passed
// through unchanged; the provider does all validation. On failure the
// provider's message becomes the error text and the screen stays. On success
// the screen navigates to RouteLogin.
func (s *SignUpScreen) Submit(ctx context.Context) (service.User, error) {
	s.mu.Lock()
	email, password := s.email, s.password
	s.mu.Unlock()

	user, err := s.svc.SignUp(ctx, email, password)
	if err != nil {
		s.mu.Lock()
		s.errText = providerMessage(err)
		s.mu.Unlock()
		return service.User{}, err
	}

	s.log.Info("sign-up succeeded", zap.String("uid", user.UID))

	s.mu.Lock()
	s.errText = ""
	s.mu.Unlock()

	if s.nav != nil {
		s.nav.Navigate(RouteLogin)
	}
	return user, nil
}

func providerMessage(err error) string {
	var perr *service.ProviderError
	if errors.As(err, &perr) {
		return perr.Message
	}
	return err.Error()
}
