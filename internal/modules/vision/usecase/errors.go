package usecase

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"ledger-import-app/internal/modules/vision/domain"
)

// IsTransient 再試行で回復する可能性のあるエラーかどうか
func IsTransient(err error) bool {
	return isRateLimit(err) || isOverload(err)
}

var (
	rateLimitCode = regexp.MustCompile(`\b429\b`)
	overloadCode  = regexp.MustCompile(`\b(503|529)\b`)
)

// ステータスコードが分かるAPIErrorは本文中の数字を見ない
func isRateLimit(err error) bool {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return rateLimitCode.MatchString(err.Error())
}

func isOverload(err error) bool {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusServiceUnavailable, 529:
			return true
		}
	} else if overloadCode.MatchString(err.Error()) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unavailable") ||
		strings.Contains(msg, "high demand") ||
		strings.Contains(msg, "overloaded")
}

// classifyError 再試行後のエラーを利用者向けのエラーに変換
func classifyError(err error) error {
	switch {
	case isOverload(err):
		return fmt.Errorf("%w: %v", ErrOverloaded, err)
	case isRateLimit(err):
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return fmt.Errorf("AI extraction failed: %w", err)
}
