package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthState_Constructors(t *testing.T) {
	assert.False(t, Unknown().IsResolved())
	assert.False(t, AuthState{}.IsResolved())
	assert.True(t, Unauthenticated().IsResolved())
	assert.False(t, Unauthenticated().IsAuthenticated())

	demo := Demo()
	assert.True(t, demo.IsAuthenticated())
	assert.True(t, demo.Demo)
	assert.Nil(t, demo.User)
	assert.Equal(t, "", demo.DisplayName())

	user := AuthUser{ID: 3, Email: "ana@empresa.mx", FullName: "Ana López", Role: "owner"}
	st := Authenticated(user)
	user.FullName = "changed"
	assert.Equal(t, "Ana López", st.DisplayName())
	assert.False(t, st.Demo)
}

func TestViewID_IsKnown(t *testing.T) {
	for _, v := range KnownViews() {
		assert.True(t, v.IsKnown(), v)
	}
	assert.False(t, ViewID("reportes").IsKnown())
	assert.False(t, ViewID("").IsKnown())
	assert.Equal(t, ViewDashboard, DefaultView)
}

func TestKnownViews_ReturnsCopy(t *testing.T) {
	views := KnownViews()
	views[0] = "hacked"
	assert.Equal(t, ViewDashboard, KnownViews()[0])
}

func TestLoadingFlags_Any(t *testing.T) {
	assert.False(t, LoadingFlags{}.Any())
	assert.True(t, LoadingFlags{Seeding: true}.Any())
	assert.True(t, LoadingFlags{ScenarioSwitching: true, Seeding: true}.Any())
}

func TestLookupTheme(t *testing.T) {
	th, ok := LookupTheme(DefaultThemeID)
	assert.True(t, ok)
	assert.Equal(t, "POA Emerald", th.Name)

	_, ok = LookupTheme("neon")
	assert.False(t, ok)
	assert.NotEmpty(t, Themes())
}

func TestAuthKeys(t *testing.T) {
	assert.ElementsMatch(t, []string{KeyToken, KeyUser, KeyDemoMode}, AuthKeys())
	assert.NotContains(t, AuthKeys(), KeyTheme)
}
