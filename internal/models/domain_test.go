package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDNSRecords(t *testing.T) {
	t.Parallel()

	records := BuildDNSRecords("example.com", "edge.hostpanel.io", "abc123")

	assert.Equal(t, "edge.hostpanel.io", records.CNAME)
	require.Len(t, records.Items, 2)

	main := records.Items[0]
	assert.Equal(t, "CNAME", main.Type)
	assert.Equal(t, "example.com", main.Host)
	assert.Equal(t, "edge.hostpanel.io", main.Target)
	assert.Equal(t, 3600, main.TTL)

	challenge := records.Items[1]
	assert.Equal(t, "CNAME", challenge.Type)
	assert.Equal(t, "_acme-challenge.example.com", challenge.Host)
	assert.Equal(t, "abc123.verify.edge.hostpanel.io", challenge.Target)
}
