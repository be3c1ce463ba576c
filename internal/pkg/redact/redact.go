// redact маскирует персональные данные и идентификаторы токенов перед записью в лог.
package redact

import "strings"

// Email оставляет первые две руны локальной части и домен.
func Email(s string) string {
	local, domain, ok := strings.Cut(s, "@")
	if !ok || strings.Contains(domain, "@") {
		return "***"
	}

	r := []rune(local)
	if len(r) <= 2 {
		return "***@" + domain
	}

	return string(r[:2]) + "***@" + domain
}

// TokenID сокращает jti до префикса: этого хватает для корреляции записей.
func TokenID(jti string) string {
	const keep = 8
	if len(jti) <= keep {
		return "***"
	}

	return jti[:keep] + "***"
}
