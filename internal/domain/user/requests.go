package user

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/geocoder89/drivingschool/internal/apperr"
	"github.com/geocoder89/drivingschool/internal/utils"
	"github.com/go-playground/validator/v10"
)

const (
	MinAge            = 18
	MinPasswordLength = 6
	// bcrypt refuses longer input.
	MaxPasswordBytes = 72
	passwordSpecials  = `!@#$%^&*(),.?":{}|<>`
)

var (
	contactPattern = regexp.MustCompile(`^[6-9]\d{9}$`)
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	validate       = validator.New()
)

// RegisterRequest binds from multipart forms and JSON alike; the avatar file
// travels separately.
type RegisterRequest struct {
	Username        string           `json:"username" form:"username"`
	Name            string           `json:"name" form:"name"`
	Age             utils.FlexString `json:"age" form:"age"`
	Address         string           `json:"address" form:"address"`
	ContactNumber   utils.FlexString `json:"contactNumber" form:"contactNumber"`
	VehicleToLearn  utils.StringList `json:"vehicleToLearn" form:"vehicleToLearn"`
	TermsAccepted   utils.FlexString `json:"termsAccepted" form:"termsAccepted"`
	Role            string           `json:"role" form:"role"`
	Email           string           `json:"email" form:"email"`
	Password        string           `json:"password" form:"password"`
	ConfirmPassword string           `json:"confirmPassword" form:"confirmPassword"`
	Experience      string           `json:"experience" form:"experience"`
	Specialties     utils.StringList `json:"specialties" form:"specialties"`
	License         string           `json:"license" form:"license"`
	Bio             string           `json:"bio" form:"bio"`
}

// Registration is a validated and normalised RegisterRequest.
type Registration struct {
	Username       string
	Name           string
	Age            int
	Address        string
	ContactNumber  string
	VehicleToLearn []string
	Role           Role
	Email          string
	Password       string
	Experience     string
	Specialties    []string
	License        string
	Bio            string
}

// Validate runs every input rule and stops at the first failure. Uniqueness is
// checked later against the store.
func (r RegisterRequest) Validate() (Registration, error) {
	out := Registration{
		Username:       NormalizeUsername(r.Username),
		Name:           strings.TrimSpace(r.Name),
		Address:        strings.TrimSpace(r.Address),
		ContactNumber:  r.ContactNumber.String(),
		VehicleToLearn: utils.Normalize(r.VehicleToLearn),
		Email:          NormalizeEmail(r.Email),
		Password:       r.Password,
		Experience:     strings.TrimSpace(r.Experience),
		Specialties:    utils.Normalize(r.Specialties),
		License:        strings.TrimSpace(r.License),
		Bio:            strings.TrimSpace(r.Bio),
	}

	required := map[string]string{
		"name":            out.Name,
		"email":           out.Email,
		"username":        out.Username,
		"password":        strings.TrimSpace(r.Password),
		"confirmPassword": strings.TrimSpace(r.ConfirmPassword),
		"age":             r.Age.String(),
		"contactNumber":   out.ContactNumber,
	}
	for _, field := range []string{"name", "email", "username", "password", "confirmPassword", "age", "contactNumber"} {
		if required[field] == "" {
			return Registration{}, fieldError(field, "required", "All fields are required")
		}
	}

	age, err := strconv.Atoi(r.Age.String())
	if err != nil {
		return Registration{}, fieldError("age", "number", "Age must be a number")
	}
	if age < MinAge {
		return Registration{}, fieldError("age", "min", "Not eligible to drive")
	}
	out.Age = age

	if !ValidContactNumber(out.ContactNumber) {
		return Registration{}, fieldError("contactNumber", "pattern", "Invalid contact number")
	}

	if accepted, err := strconv.ParseBool(r.TermsAccepted.String()); err != nil || !accepted {
		return Registration{}, fieldError("termsAccepted", "required", "Terms and Conditions are required to accept")
	}

	if !ValidEmail(out.Email) {
		return Registration{}, fieldError("email", "email", "Invalid email address")
	}

	if len(r.Password) > MaxPasswordBytes {
		return Registration{}, fieldError("password", "max", "Password must be at most 72 characters long")
	}

	if !ValidPassword(r.Password) {
		return Registration{}, fieldError("password", "policy",
			"Password must be at least 6 characters long and include uppercase, lowercase, number, and special character.")
	}

	if r.Password != r.ConfirmPassword {
		return Registration{}, fieldError("confirmPassword", "eqfield", "Password does not match with confirm Password")
	}

	out.Role = RoleCandidate
	if role := strings.TrimSpace(r.Role); role != "" {
		out.Role = Role(role)
	}
	if !out.Role.IsValid() {
		return Registration{}, fieldError("role", "oneof", "Role must be Candidate or Instructor")
	}

	if out.Role == RoleInstructor {
		if out.Experience == "" || len(out.Specialties) == 0 || out.License == "" || out.Bio == "" {
			return Registration{}, fieldError("specialties", "required_if",
				"Experience, specialties, license, bio fields are required for instructor")
		}
	} else {
		out.Experience, out.Specialties, out.License, out.Bio = "", nil, "", ""
	}

	return out, nil
}

// UpdateProfileRequest applies only the non-empty fields.
type UpdateProfileRequest struct {
	UserID        string           `json:"userId" binding:"required"`
	Name          string           `json:"name"`
	Bio           string           `json:"bio"`
	Address       string           `json:"address"`
	ContactNumber utils.FlexString `json:"contactNumber"`
	License       string           `json:"license"`
	Experience    string           `json:"experience"`
	Specialties   utils.StringList `json:"specialties"`
}

// Apply copies the supplied fields onto u and reports whether the contact
// number changed, so the caller can re-check uniqueness.
func (r UpdateProfileRequest) Apply(u *User) (contactChanged bool, err error) {
	if v := strings.TrimSpace(r.Name); v != "" {
		u.Name = v
	}
	if v := strings.TrimSpace(r.Bio); v != "" {
		u.Bio = v
	}
	if v := strings.TrimSpace(r.Address); v != "" {
		u.Address = v
	}
	if v := r.ContactNumber.String(); v != "" && v != u.ContactNumber {
		if !ValidContactNumber(v) {
			return false, fieldError("contactNumber", "pattern", "Invalid contact number")
		}
		u.ContactNumber = v
		contactChanged = true
	}
	if v := strings.TrimSpace(r.License); v != "" {
		u.License = v
	}
	if v := strings.TrimSpace(r.Experience); v != "" {
		u.Experience = v
	}
	if specialties := utils.Normalize(r.Specialties); len(specialties) > 0 {
		u.Specialties = specialties
	}

	return contactChanged, nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func ValidContactNumber(n string) bool {
	return contactPattern.MatchString(n)
}

// ValidEmail keeps the loose shape check the frontend relies on and adds the
// validator's RFC 5322 parse.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email) && validate.Var(email, "required,email") == nil
}

// ValidPassword: at least 6 characters drawn only from letters, digits and the
// allowed specials, with at least one of each class.
func ValidPassword(p string) bool {
	if len(p) < MinPasswordLength {
		return false
	}

	var lower, upper, digit, special bool

	for _, r := range p {
		switch {
		case r > unicode.MaxASCII:
			return false
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			return false
		}
	}

	return lower && upper && digit && special
}

func fieldError(field, rule, message string) *apperr.Error {
	return apperr.Validation("invalid_request", message).WithDetails(map[string]string{
		"field": field,
		"rule":  rule,
	})
}
