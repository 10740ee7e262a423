// Package validation implements per-field request rules. Rules are
// evaluated in full (collect-all, not fail-fast) and produce an ordered
// list of field errors surfaced verbatim to the client.
package validation

import (
	"regexp"
	"time"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/security"
)

const (
	usernameMin    = 3
	usernameMax    = 30
	titleMax       = 200
	descriptionMax = 1000
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// FieldError is a single validation failure on a named field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is the collected result of a validation pass.
type Errors []FieldError

func (e Errors) Empty() bool { return len(e) == 0 }

func (e *Errors) add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// Register validates a registration request.
func Register(username, email, password string) Errors {
	var errs Errors
	if len(username) < usernameMin || len(username) > usernameMax {
		errs.add("username", "Username must be between 3 and 30 characters")
	} else if !usernameRe.MatchString(username) {
		errs.add("username", "Username can only contain letters, numbers, and underscores")
	}
	if !security.IsValidEmail(email) {
		errs.add("email", "Please provide a valid email")
	}
	if len(password) < 8 {
		errs.add("password", "Password must be at least 8 characters long")
	} else if !security.IsStrongPassword(password) {
		errs.add("password", "Password must contain at least one lowercase letter, one uppercase letter, one number, and one special character")
	}
	return errs
}

// Login validates a login request.
func Login(email, password string) Errors {
	var errs Errors
	if !security.IsValidEmail(email) {
		errs.add("email", "Please provide a valid email")
	}
	if password == "" {
		errs.add("password", "Password is required")
	}
	return errs
}

// TodoCreate validates a todo creation request against now. An absent
// deadline is allowed; the handler substitutes its default. An absent
// priority is allowed; the store default applies.
func TodoCreate(title, description string, deadline DateTime, priority string, now time.Time) Errors {
	var errs Errors
	errs = append(errs, titleRules(title)...)
	errs = append(errs, descriptionRules(description)...)
	errs = append(errs, deadlineRules(deadline, now)...)
	if priority != "" && !domain.ValidPriority(priority) {
		errs.add("priority", "Priority must be low, medium, or high")
	}
	return errs
}

// TodoUpdate validates a partial update. Only provided fields are checked;
// absent fields stay untouched by the handler.
func TodoUpdate(title, description *string, deadline DateTime, priority *string, now time.Time) Errors {
	var errs Errors
	if title != nil {
		errs = append(errs, titleRules(*title)...)
	}
	if description != nil {
		errs = append(errs, descriptionRules(*description)...)
	}
	errs = append(errs, deadlineRules(deadline, now)...)
	if priority != nil && !domain.ValidPriority(*priority) {
		errs.add("priority", "Priority must be low, medium, or high")
	}
	return errs
}

func titleRules(title string) Errors {
	var errs Errors
	n := len(trimmed(title))
	if n < 1 || n > titleMax {
		errs.add("title", "Title must be between 1 and 200 characters")
	}
	return errs
}

func descriptionRules(description string) Errors {
	var errs Errors
	if len(trimmed(description)) > descriptionMax {
		errs.add("description", "Description cannot exceed 1000 characters")
	}
	return errs
}

func deadlineRules(deadline DateTime, now time.Time) Errors {
	var errs Errors
	if !deadline.Provided() {
		return errs
	}
	if !deadline.Valid() {
		errs.add("deadline", "Please provide a valid deadline date")
		return errs
	}
	if !deadline.Time().After(now) {
		errs.add("deadline", "Deadline must be in the future")
	}
	return errs
}
