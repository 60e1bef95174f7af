package validator

import (
	"regexp"
	"strings"
	"time"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

// First returns one message for the flat {success,message} envelope.
func (v ValidationErrors) First() string {
	for _, msg := range v {
		return msg
	}
	return ""
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func ValidateRegister(username, password string) ValidationErrors {
	errs := make(ValidationErrors)

	username = strings.TrimSpace(username)
	if username == "" {
		errs.Add("username", "Username is required")
	} else if len(username) < 3 {
		errs.Add("username", "Username must be at least 3 characters long")
	} else if len(username) > 30 {
		errs.Add("username", "Username cannot be longer than 30 characters")
	} else if !usernameRegex.MatchString(username) {
		errs.Add("username", "Username can only contain letters, numbers, and underscores")
	}

	if password == "" {
		errs.Add("password", "Password is required")
	} else if len(password) < 6 {
		errs.Add("password", "Password must be at least 6 characters long")
	} else if len(password) > 128 {
		errs.Add("password", "Password cannot be longer than 128 characters")
	}

	return errs
}

func ValidateLogin(username, password string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(username) == "" {
		errs.Add("username", "Username is required")
	}
	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

func ValidateThread(title, description, location string, expiresAt time.Time) ValidationErrors {
	errs := make(ValidationErrors)

	title = strings.TrimSpace(title)
	if title == "" {
		errs.Add("title", "Title is required")
	} else if len(title) > 200 {
		errs.Add("title", "Title cannot be longer than 200 characters")
	}

	if strings.TrimSpace(description) == "" {
		errs.Add("description", "Description is required")
	}

	location = strings.TrimSpace(location)
	if location == "" {
		errs.Add("location", "Location is required")
	} else if len(location) > 200 {
		errs.Add("location", "Location cannot be longer than 200 characters")
	}

	if expiresAt.IsZero() {
		errs.Add("expiresAt", "Expiry time is required")
	} else if !expiresAt.After(time.Now()) {
		errs.Add("expiresAt", "Expiry time must be in the future")
	}

	return errs
}

func ValidateMessage(body string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(body) == "" {
		errs.Add("message", "Message is required")
	}

	return errs
}
