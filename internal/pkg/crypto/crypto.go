package crypto

import (
	"regexp"

	"golang.org/x/crypto/bcrypt"

	pkgErrors "bugtrack/pkg/errors"
)

var (
	digitPattern = regexp.MustCompile(`[\d]+`)
	upperPattern = regexp.MustCompile(`[A-Z]`)
)

// HashPassword 哈希密码 (bcrypt)
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword 验证密码
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// ValidatePassword 校验密码策略: 至少8位, 含至少1个数字和1个大写字母, 两次输入一致
func ValidatePassword(password, confirm string) error {
	if len(password) < 8 {
		return pkgErrors.New(pkgErrors.CodeValidationError, "Password must contain at least 8 characters.")
	}
	if !digitPattern.MatchString(password) || !upperPattern.MatchString(password) {
		return pkgErrors.New(pkgErrors.CodeValidationError, "Password must contain at least 1 digit and 1 uppercase character.")
	}
	if password != confirm {
		return pkgErrors.New(pkgErrors.CodeValidationError, "Passwords do not match.")
	}
	return nil
}
