package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// NormalizePhone strips the separators farmers commonly type into a number.
func NormalizePhone(phone string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
	return replacer.Replace(strings.TrimSpace(phone))
}

// ValidatePhone accepts an optional leading + followed by 7 to 15 digits.
func ValidatePhone(phone string) (bool, error) {
	if !phonePattern.MatchString(NormalizePhone(phone)) {
		return false, fmt.Errorf("phone format incorrect")
	}
	return true, nil
}

var otpPattern = regexp.MustCompile(`^[0-9]{4,8}$`)

func ValidateOTP(otp string) (bool, error) {
	if !otpPattern.MatchString(otp) {
		return false, fmt.Errorf("otp must be 4 to 8 digits")
	}
	return true, nil
}

// GetFormInt reads an optional integer form field. A missing or blank field
// yields nil.
func GetFormInt(c *gin.Context, field string) (*int, error) {
	raw := strings.TrimSpace(c.PostForm(field))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return nil, fmt.Errorf("invalid %s", field)
	}
	return &v, nil
}
