// Package loginform drives the login flow: local validation, a single submit
// path through the session store, and a dismissible failure banner.
package loginform

import (
	"context"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/socivio/socivio/internal/cli/session"
)

// DashboardPath is where a successful login lands
const DashboardPath = "/dashboard"

// Field names used as FieldErrors keys
const (
	FieldEmail    = "email"
	FieldPassword = "password"
)

// Field-level messages shown next to the offending input
const (
	MsgEmailRequired    = "Email is required"
	MsgEmailInvalid     = "Enter a valid email address"
	MsgPasswordRequired = "Password is required"
	MsgPasswordTooShort = "Password must be at least 6 characters"
)

type fields struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Controller owns the login form state. Construct one per login surface and
// feed it input through SetEmail/SetPassword/Submit.
type Controller struct {
	mu       sync.Mutex
	store    *session.Store
	validate *validator.Validate
	navigate func(path string)

	email       string
	password    string
	fieldErrors map[string]string
	banner      string
	busy        bool
}

// New creates a login form controller. navigate is called with DashboardPath
// after a successful submit.
func New(store *session.Store, navigate func(path string)) *Controller {
	return &Controller{
		store:       store,
		validate:    validator.New(),
		navigate:    navigate,
		fieldErrors: make(map[string]string),
	}
}

// SetEmail updates the email input. Editing clears that field's error.
func (c *Controller) SetEmail(email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.email = email
	delete(c.fieldErrors, FieldEmail)
}

// SetPassword updates the password input. Editing clears that field's error.
func (c *Controller) SetPassword(password string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.password = password
	delete(c.fieldErrors, FieldPassword)
}

// Email returns the current email input. Inputs survive failed submits so the
// user can correct rather than retype.
func (c *Controller) Email() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.email
}

// Password returns the current password input
func (c *Controller) Password() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.password
}

// FieldErrors returns a copy of the per-field validation messages
func (c *Controller) FieldErrors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.fieldErrors))
	for k, v := range c.fieldErrors {
		out[k] = v
	}
	return out
}

// Banner returns the current failure banner text, empty when none is shown
func (c *Controller) Banner() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.banner
}

// DismissBanner hides the failure banner
func (c *Controller) DismissBanner() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.banner = ""
}

// Busy reports whether a submit is in flight. Callers disable the submit
// control while busy.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Submit validates the inputs and, only if both pass, attempts a login
// through the session store. Local validation failures never reach the
// network. On success the controller navigates to the dashboard; on failure
// it raises a banner with a user-safe message and keeps the inputs.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return session.ErrOperationInFlight
	}

	c.fieldErrors = make(map[string]string)
	c.banner = ""

	in := fields{Email: strings.TrimSpace(c.email), Password: c.password}
	if err := c.validate.Struct(in); err != nil {
		c.applyValidationLocked(err)
		fieldErr := session.NewValidationError("Fix the highlighted fields")
		c.mu.Unlock()
		return fieldErr
	}

	c.busy = true
	c.mu.Unlock()

	err := c.store.Login(ctx, session.Credentials{Email: in.Email, Password: in.Password})

	c.mu.Lock()
	c.busy = false
	if err != nil {
		c.banner = session.DisplayMessage(err)
		c.mu.Unlock()
		return err
	}
	navigate := c.navigate
	c.mu.Unlock()

	if navigate != nil {
		navigate(DashboardPath)
	}
	return nil
}

func (c *Controller) applyValidationLocked(err error) {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		c.banner = session.FallbackMessage
		return
	}
	for _, fe := range validationErrs {
		switch fe.Field() {
		case "Email":
			if fe.Tag() == "required" {
				c.fieldErrors[FieldEmail] = MsgEmailRequired
			} else {
				c.fieldErrors[FieldEmail] = MsgEmailInvalid
			}
		case "Password":
			if fe.Tag() == "required" {
				c.fieldErrors[FieldPassword] = MsgPasswordRequired
			} else {
				c.fieldErrors[FieldPassword] = MsgPasswordTooShort
			}
		}
	}
}
