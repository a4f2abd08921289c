package differ

import "strings"

// SeverityLevel 0=info, 1=moderate, 2=critical
type SeverityLevel int

const (
	SeverityInfo SeverityLevel = iota
	SeverityModerate
	SeverityCritical
)

// SeverityString for output
func SeverityString(s SeverityLevel) string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityModerate:
		return "moderate"
	default:
		return "info"
	}
}

// keys whose change is security-relevant regardless of direction
var sensitiveKeywords = []string{
	"tls", "auth", "password", "secret", "token", "cert",
	"admin", "firewall", "encrypt", "permission", "acl",
}

// keys whose change is cosmetic
var cosmeticKeywords = []string{
	"description", "comment", "label", "annotation",
}

// GetSeverity classifies a change by its path and direction.
func GetSeverity(path string, t ChangeType) SeverityLevel {
	lower := strings.ToLower(path)

	for _, kw := range sensitiveKeywords {
		if strings.Contains(lower, kw) {
			return SeverityCritical
		}
	}

	for _, kw := range cosmeticKeywords {
		if strings.Contains(lower, kw) {
			return SeverityInfo
		}
	}

	// losing a setting is worse than gaining or changing one
	if t == ChangeRemoved {
		return SeverityCritical
	}

	return SeverityModerate
}
