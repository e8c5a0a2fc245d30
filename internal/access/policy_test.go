// AngelaMos | 2026
// policy_test.go

package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanReadSensitive(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		visibility []string
		want       bool
	}{
		{"empty visibility anonymous", "", []string{}, true},
		{"nil visibility anonymous", "", nil, true},
		{"premium only denies free", RoleFree, []string{RolePremium}, false},
		{"premium only allows premium", RolePremium, []string{RolePremium}, true},
		{"premium only denies anonymous", "", []string{RolePremium}, false},
		{"free sentinel allows anonymous", "", []string{RoleFree}, true},
		{"free sentinel alongside premium", RoleFree, []string{RolePremium, RoleFree}, true},
		{"admin bypasses list", RoleAdmin, []string{RolePremium}, true},
		{"unknown role denied", "guest", []string{RolePremium}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanReadSensitive(tt.role, tt.visibility))
		})
	}
}

func TestCanListMedia(t *testing.T) {
	assert.True(t, CanListMedia(RoleAdmin))
	assert.False(t, CanListMedia(RolePremium))
	assert.False(t, CanListMedia(RoleFree))
	assert.False(t, CanListMedia(""))
}

func TestCanReadCollection(t *testing.T) {
	assert.True(t, CanReadCollection())
}

func TestServerTokenMatches(t *testing.T) {
	assert.True(t, ServerTokenMatches("s3cr3t", "s3cr3t"))
	assert.False(t, ServerTokenMatches("s3cr3t", "S3CR3T"))
	assert.False(t, ServerTokenMatches("s3cr3t", ""))
	assert.False(t, ServerTokenMatches("", ""))
	assert.False(t, ServerTokenMatches("", "anything"))
}

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole("premium"))
	assert.False(t, IsValidRole("pro"))
	assert.False(t, IsValidRole(""))
}
