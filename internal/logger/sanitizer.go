package logger

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultSensitiveFields are the column names masked when none are configured.
var DefaultSensitiveFields = []string{
	"password", "passwd", "pwd",
	"token", "api_key", "apikey", "api_token",
	"secret", "auth", "authorization",
	"credit_card", "card_number", "cvv", "cvc",
	"ssn", "social_security",
	"private_key", "priv_key",
}

const maskValue = "***REDACTED***"

var (
	// insertColumns matches the column list of a compiled INSERT.
	insertColumns = regexp.MustCompile(`(?is)^\s*insert\s+into\s+\S+\s*\(([^)]*)\)`)
	placeholder   = regexp.MustCompile(`\?|\$\d+|@p\d+`)
)

// Sanitizer masks sensitive parameter values before they are logged.
//
// For an INSERT whose VALUES rows contain only placeholders, each parameter
// is mapped to its column and only values of sensitive columns are masked.
// For any other statement that mentions a sensitive column, every parameter
// is masked.
type Sanitizer struct {
	patterns []*regexp.Regexp
}

// NewSanitizer creates a sanitizer for the given column names, or for
// DefaultSensitiveFields if none are given.
func NewSanitizer(sensitiveFields []string) *Sanitizer {
	if len(sensitiveFields) == 0 {
		sensitiveFields = DefaultSensitiveFields
	}
	patterns := make([]*regexp.Regexp, 0, len(sensitiveFields))
	for _, field := range sensitiveFields {
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(field)+`\b`))
	}
	return &Sanitizer{patterns: patterns}
}

// MaskParams returns params with sensitive values replaced. The input slice
// is never modified.
func (s *Sanitizer) MaskParams(sql string, params []interface{}) []interface{} {
	if len(params) == 0 || !s.sensitive(sql) {
		return params
	}

	masked := make([]interface{}, len(params))
	if cols := insertParamColumns(sql, len(params)); cols != nil {
		for i, p := range params {
			if s.sensitive(cols[i%len(cols)]) {
				masked[i] = maskValue
			} else {
				masked[i] = p
			}
		}
		return masked
	}

	for i := range masked {
		masked[i] = maskValue
	}
	return masked
}

func (s *Sanitizer) sensitive(text string) bool {
	for _, p := range s.patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// insertParamColumns returns the column list of sql when every parameter
// binds one column of a VALUES row, or nil otherwise.
func insertParamColumns(sql string, nParams int) []string {
	m := insertColumns.FindStringSubmatch(sql)
	if m == nil {
		return nil
	}
	cols := strings.Split(m[1], ",")
	for i, c := range cols {
		cols[i] = strings.Trim(strings.TrimSpace(c), "\"`[]")
	}

	lower := strings.ToLower(sql)
	idx := strings.Index(lower, " values ")
	if idx < 0 || nParams%len(cols) != 0 {
		return nil
	}
	rows := sql[idx+len(" values "):]
	if end := strings.Index(strings.ToLower(rows), " returning "); end >= 0 {
		rows = rows[:end]
	}
	if strings.Trim(placeholder.ReplaceAllString(rows, ""), "(), ") != "" {
		return nil
	}
	if len(placeholder.FindAllString(rows, -1)) != nParams {
		return nil
	}
	return cols
}

// FormatParams converts parameters to a string for logging, truncating long values.
// Mask them with MaskParams first.
func (s *Sanitizer) FormatParams(params []interface{}) string {
	if len(params) == 0 {
		return "[]"
	}
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = formatValue(p)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatValue(v interface{}) string {
	if v == nil {
		return "NULL"
	}
	str := fmt.Sprintf("%v", v)
	const maxLen = 100
	if len(str) > maxLen {
		return str[:maxLen] + "..."
	}
	return str
}
