package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserIDSetAdd(t *testing.T) {
	s := UserIDSet{}
	assert.True(t, s.Add("a"))
	assert.True(t, s.Add("b"))
	assert.False(t, s.Add("a"))
	assert.Equal(t, UserIDSet{"a", "b"}, s)
}

func TestUserIDSetRemove(t *testing.T) {
	s := UserIDSet{"a", "b", "c"}
	assert.True(t, s.Remove("b"))
	assert.False(t, s.Remove("b"))
	assert.Equal(t, UserIDSet{"a", "c"}, s)
}

func TestUserIDSetContains(t *testing.T) {
	s := UserIDSet{"a"}
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("z"))
	assert.False(t, UserIDSet(nil).Contains("a"))
}

func TestRecordResponse(t *testing.T) {
	c := &HeadcountCampaign{}

	c.RecordResponse("alice", false)
	c.RecordResponse("bob", true)

	assert.Equal(t, UserIDSet{"alice", "bob"}, c.RespondedUserIDs)
	assert.Equal(t, UserIDSet{"bob"}, c.NeedAssistanceUserIDs)
	assert.Equal(t, UserIDSet{"alice"}, c.SafeUserIDs)
}

func TestRecordResponseMigratesBetweenSets(t *testing.T) {
	c := &HeadcountCampaign{}

	c.RecordResponse("alice", true)
	c.RecordResponse("alice", false)

	assert.Equal(t, UserIDSet{"alice"}, c.RespondedUserIDs)
	assert.Empty(t, c.NeedAssistanceUserIDs)
	assert.Equal(t, UserIDSet{"alice"}, c.SafeUserIDs)
}

func TestRecordResponseIdempotent(t *testing.T) {
	c := &HeadcountCampaign{}

	c.RecordResponse("alice", true)
	c.RecordResponse("alice", true)

	assert.Equal(t, UserIDSet{"alice"}, c.RespondedUserIDs)
	assert.Equal(t, UserIDSet{"alice"}, c.NeedAssistanceUserIDs)
	assert.Empty(t, c.SafeUserIDs)
}
