package utils

import (
	"net/url"
	"regexp"
	"strings"
)

// EmailRegex matches the student email format accepted at the boundary
var EmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const maxNameLength = 100

// FieldError is a single field-level validation failure
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateEmail checks if email format is valid
func ValidateEmail(email string) bool {
	return EmailRegex.MatchString(email)
}

// CreatePaymentInput is the unvalidated create-payment request body
type CreatePaymentInput struct {
	OrderAmount float64 `json:"order_amount"`
	CallbackURL string  `json:"callback_url"`
	StudentInfo struct {
		Name  string `json:"name"`
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"student_info"`
}

// ValidateCreatePayment returns the field-level errors of a create-payment
// request; an empty slice means the request is valid
func ValidateCreatePayment(in *CreatePaymentInput) []FieldError {
	var errs []FieldError

	if in.OrderAmount <= 0 {
		errs = append(errs, FieldError{"order_amount", "Order amount must be greater than 0"})
	}

	if strings.TrimSpace(in.CallbackURL) == "" {
		errs = append(errs, FieldError{"callback_url", "Callback URL is required"})
	} else if u, err := url.ParseRequestURI(in.CallbackURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, FieldError{"callback_url", "Callback URL must be a valid URL"})
	}

	if strings.TrimSpace(in.StudentInfo.Name) == "" {
		errs = append(errs, FieldError{"student_info.name", "Student name is required"})
	} else if len(in.StudentInfo.Name) > maxNameLength {
		errs = append(errs, FieldError{"student_info.name", "Student name is too long"})
	}

	if strings.TrimSpace(in.StudentInfo.ID) == "" {
		errs = append(errs, FieldError{"student_info.id", "Student ID is required"})
	}

	if strings.TrimSpace(in.StudentInfo.Email) == "" {
		errs = append(errs, FieldError{"student_info.email", "Student email is required"})
	} else if !ValidateEmail(strings.TrimSpace(in.StudentInfo.Email)) {
		errs = append(errs, FieldError{"student_info.email", "Invalid email format"})
	}

	return errs
}

// ValidateRegister checks a registration request
func ValidateRegister(username, password string) []FieldError {
	var errs []FieldError
	if len(username) < 3 || len(username) > 50 {
		errs = append(errs, FieldError{"username", "Username must be between 3 and 50 characters"})
	}
	if len(password) < 6 {
		errs = append(errs, FieldError{"password", "Password must be at least 6 characters long"})
	}
	return errs
}
