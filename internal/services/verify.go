package services

import (
	"math/rand"

	"github.com/hostpanel/backend/internal/models"
)

// VerifyFunc decides whether a domain's DNS records check out. Real DNS
// resolution is deliberately out of scope; production uses the simulated
// predicate below, tests inject fixed outcomes.
type VerifyFunc func(domain *models.Domain) bool

// RandomVerify is the simulated production predicate: passes roughly 70%
// of the time, with no side effect on failure.
func RandomVerify(_ *models.Domain) bool {
	return rand.Float64() < 0.7
}

// AlwaysPass is a fixed predicate for tests
func AlwaysPass(_ *models.Domain) bool { return true }

// AlwaysFail is a fixed predicate for tests
func AlwaysFail(_ *models.Domain) bool { return false }
