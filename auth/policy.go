package auth

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/user/augmentations-api/config"
)

// CheckPasswordPolicy evaluates password against the configured policy
// and returns the list of unmet rules, empty when the password passes.
// The default policy (minimum length 4, no complexity requirements) is
// intentionally permissive; see config.PasswordPolicy.
func CheckPasswordPolicy(policy *config.PasswordPolicy, password string) []string {
	var violations []string

	if len(password) < policy.MinLength {
		violations = append(violations, fmt.Sprintf("must be at least %d characters", policy.MinLength))
	}
	if policy.RequireDigit && !strings.ContainsFunc(password, unicode.IsDigit) {
		violations = append(violations, "must contain a digit")
	}
	if policy.RequireUppercase && !strings.ContainsFunc(password, unicode.IsUpper) {
		violations = append(violations, "must contain an uppercase letter")
	}
	if policy.RequireLowercase && !strings.ContainsFunc(password, unicode.IsLower) {
		violations = append(violations, "must contain a lowercase letter")
	}
	if policy.RequireSymbol && !strings.ContainsFunc(password, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	}) {
		violations = append(violations, "must contain a symbol")
	}

	return violations
}
