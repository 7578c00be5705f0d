package appenv

import (
	"os"
	"strings"
)

// Env represents the application runtime environment.
type Env string

const (
	Production  Env = "production"
	Test        Env = "test"
	Development Env = "development"
)

// Current returns the effective runtime environment from APP_ENV.
// Unknown or empty values default to Production.
func Current() Env {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV")))
	switch raw {
	case string(Test):
		return Test
	case string(Development), "dev":
		return Development
	default:
		return Production
	}
}

func IsProduction() bool  { return Current() == Production }
func IsTest() bool        { return Current() == Test }
func IsDevelopment() bool { return Current() == Development }
