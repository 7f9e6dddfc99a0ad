package services

import (
	"testing"

	"github.com/hostpanel/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestFixedPredicates(t *testing.T) {
	t.Parallel()

	domain := &models.Domain{Name: "example.com"}

	assert.True(t, AlwaysPass(domain))
	assert.False(t, AlwaysFail(domain))
}

func TestRandomVerifyEventuallyReturnsBoth(t *testing.T) {
	t.Parallel()

	domain := &models.Domain{Name: "example.com"}

	sawPass, sawFail := false, false
	for i := 0; i < 1000 && !(sawPass && sawFail); i++ {
		if RandomVerify(domain) {
			sawPass = true
		} else {
			sawFail = true
		}
	}

	assert.True(t, sawPass, "predicate never passed in 1000 attempts")
	assert.True(t, sawFail, "predicate never failed in 1000 attempts")
}
