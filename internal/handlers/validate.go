package handlers

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation limits for form fields.
const (
	minUsernameLen = 3
	maxUsernameLen = 60
	minEmailLen    = 4
	maxEmailLen    = 200
	minPasswordLen = 3
	maxPasswordLen = 200
	maxCityLen     = 169
	maxTitleLen    = 59
	maxPostLen     = 1999
	maxCommentLen  = 399
)

var (
	emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	cityRe  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
)

// validateUsername checks a username field and returns the first error found.
func validateUsername(username string) string {
	if strings.TrimSpace(username) == "" {
		return "Username is required."
	}
	n := utf8.RuneCountInString(username)
	if n < minUsernameLen || n > maxUsernameLen {
		return "Username has to be between 3 and 60 characters long."
	}
	return ""
}

func validateEmail(email string) string {
	if strings.TrimSpace(email) == "" {
		return "Email is required."
	}
	n := utf8.RuneCountInString(email)
	if n < minEmailLen || n > maxEmailLen {
		return "Your email has to be between 4 and 200 characters long."
	}
	if !emailRe.MatchString(email) {
		return "Your email is invalid."
	}
	return ""
}

// validatePassword checks a password and its confirmation together.
func validatePassword(password, confirm string) string {
	if password == "" {
		return "Password is required."
	}
	n := utf8.RuneCountInString(password)
	if n < minPasswordLen || n > maxPasswordLen {
		return "Your password has to be between 3 and 200 characters long."
	}
	if password != confirm {
		return "You typed in two different passwords."
	}
	return ""
}

// validateCity checks a city name. The empty string is valid where the
// field is optional; callers requiring it check for emptiness first.
func validateCity(city string) string {
	if city == "" {
		return ""
	}
	if utf8.RuneCountInString(city) > maxCityLen {
		return "The city name needs to be in between 1 and 169 characters."
	}
	if !cityRe.MatchString(city) {
		return "Unsupported characters."
	}
	return ""
}

func validatePost(title, content string) string {
	if strings.TrimSpace(title) == "" {
		return "Title field is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title has to be less than 60 characters long."
	}
	if strings.TrimSpace(content) == "" {
		return "Content field is required."
	}
	if utf8.RuneCountInString(content) > maxPostLen {
		return "The post should be less than 2000 characters long."
	}
	return ""
}

func validateComment(content string) string {
	if strings.TrimSpace(content) == "" {
		return "Content field is required."
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return "The comment has to be less than 400 characters."
	}
	return ""
}
