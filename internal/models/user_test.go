package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanTierQuotas(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(1*1024*1024*1024), PlanFree.StorageQuota())
	assert.Equal(t, int64(10*1024*1024*1024), PlanPro.StorageQuota())
	assert.Equal(t, int64(100*1024*1024*1024), PlanEnterprise.StorageQuota())

	assert.Equal(t, 2, PlanFree.DomainQuota())
	assert.Equal(t, 10, PlanPro.DomainQuota())
	assert.Equal(t, 100, PlanEnterprise.DomainQuota())

	// unknown tiers fall back to free
	assert.Equal(t, PlanFree.StorageQuota(), PlanTier(99).StorageQuota())
	assert.Equal(t, PlanFree.DomainQuota(), PlanTier(99).DomainQuota())
}

func TestPlanTierJSON(t *testing.T) {
	t.Parallel()

	out, err := json.Marshal(PlanPro)
	require.NoError(t, err)
	assert.Equal(t, `"pro"`, string(out))

	var tier PlanTier
	require.NoError(t, json.Unmarshal([]byte(`"enterprise"`), &tier))
	assert.Equal(t, PlanEnterprise, tier)

	// numeric form is accepted for backwards compatibility
	require.NoError(t, json.Unmarshal([]byte(`2`), &tier))
	assert.Equal(t, PlanPro, tier)

	// unknown strings degrade to free rather than erroring
	require.NoError(t, json.Unmarshal([]byte(`"platinum"`), &tier))
	assert.Equal(t, PlanFree, tier)
}
