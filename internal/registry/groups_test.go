package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforce-ops/sentinel/internal/domain"
	"github.com/taskforce-ops/sentinel/internal/registry"
)

func TestGroupsCreateAssignsIncreasingIDs(t *testing.T) {
	t.Parallel()

	groups := registry.NewGroups()

	a, err := groups.CreateGroup(domain.Group{Owner: "alice", Name: "zeus night", Needed: 3})
	require.NoError(t, err)
	b, err := groups.CreateGroup(domain.Group{Owner: "bob", Name: "tvt", Needed: 2})
	require.NoError(t, err)

	assert.Greater(t, b.ID, a.ID)
}

func TestGroupsOnePerOwner(t *testing.T) {
	t.Parallel()

	groups := registry.NewGroups()

	_, err := groups.CreateGroup(domain.Group{Owner: "alice", Name: "zeus night", Needed: 3})
	require.NoError(t, err)

	_, err = groups.CreateGroup(domain.Group{Owner: "alice", Name: "another", Needed: 2})
	assert.ErrorIs(t, err, domain.ErrAlreadyLooking)

	// a flight is tracked independently from a group
	_, err = groups.CreateFlight(domain.Flight{Owner: "alice", Game: "BMS"})
	require.NoError(t, err)

	_, err = groups.CreateFlight(domain.Flight{Owner: "alice", Game: "DCS"})
	assert.ErrorIs(t, err, domain.ErrAlreadyLooking)
}

func TestGroupsJoinFillExactness(t *testing.T) {
	t.Parallel()

	groups := registry.NewGroups()
	g, err := groups.CreateGroup(domain.Group{Owner: "alice", Name: "zeus night", Needed: 2})
	require.NoError(t, err)

	_, filled, ok := groups.JoinGroup(g.ID, "bob")
	require.True(t, ok)
	assert.False(t, filled)

	full, filled, ok := groups.JoinGroup(g.ID, "carol")
	require.True(t, ok)
	assert.True(t, filled)
	assert.Equal(t, []string{"bob", "carol"}, full.Found)

	// the filling join retires the record under the registry lock, so a
	// join racing the fill announcement cannot land in the dead group
	assert.Empty(t, groups.Groups())
	_, filled, ok = groups.JoinGroup(g.ID, "dave")
	assert.False(t, ok)
	assert.False(t, filled)

	// and the owner is free to post again
	_, err = groups.CreateGroup(domain.Group{Owner: "alice", Name: "round two", Needed: 2})
	assert.NoError(t, err)
}

func TestGroupsJoinAbsentIDIsNoop(t *testing.T) {
	t.Parallel()

	groups := registry.NewGroups()

	_, filled, ok := groups.JoinGroup(42, "bob")
	assert.False(t, ok)
	assert.False(t, filled)

	_, ok = groups.JoinFlight(42, "bob")
	assert.False(t, ok)
}

func TestGroupsDuplicateJoinsKept(t *testing.T) {
	t.Parallel()

	groups := registry.NewGroups()
	g, err := groups.CreateGroup(domain.Group{Owner: "alice", Name: "zeus night", Needed: 3})
	require.NoError(t, err)

	groups.JoinGroup(g.ID, "bob")
	got, filled, ok := groups.JoinGroup(g.ID, "bob")
	require.True(t, ok)
	assert.False(t, filled)
	assert.Equal(t, []string{"bob", "bob"}, got.Found)
}

func TestGroupsDeleteOwnerOnly(t *testing.T) {
	t.Parallel()

	groups := registry.NewGroups()
	g, err := groups.CreateGroup(domain.Group{Owner: "alice", Name: "zeus night", Needed: 2})
	require.NoError(t, err)

	assert.ErrorIs(t, groups.DeleteGroup(g.ID, "bob"), domain.ErrNotOwner)
	assert.NoError(t, groups.DeleteGroup(g.ID, "alice"))
	assert.ErrorIs(t, groups.DeleteGroup(g.ID, "alice"), domain.ErrNotFound)
}

func TestFlightsJoinNeverFills(t *testing.T) {
	t.Parallel()

	groups := registry.NewGroups()
	f, err := groups.CreateFlight(domain.Flight{Owner: "alice", Game: "DCS", Details: "strike package"})
	require.NoError(t, err)

	for _, user := range []string{"bob", "carol", "dave", "erin"} {
		got, ok := groups.JoinFlight(f.ID, user)
		require.True(t, ok)
		assert.Contains(t, got.Found, user)
	}

	assert.Len(t, groups.Flights(), 1)
}

func TestGroupsRemoveIdempotent(t *testing.T) {
	t.Parallel()

	groups := registry.NewGroups()

	assert.False(t, groups.RemoveGroup(7))
	assert.False(t, groups.RemoveFlight(7))
}
