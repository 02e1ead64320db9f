package util

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDs(t *testing.T) {
	assert.Len(t, NewULID(), 26)
	assert.NotEqual(t, NewULID(), NewULID())
	assert.True(t, IsUUID(NewUUID()))
	assert.False(t, IsUUID("not-a-uuid"))
}

func TestNullConversions(t *testing.T) {
	assert.False(t, StringPtrToNullString(nil).Valid)
	s := "x"
	assert.Equal(t, sql.NullString{String: "x", Valid: true}, StringPtrToNullString(&s))
	assert.Nil(t, NullStringToPtr(sql.NullString{}))
	assert.Equal(t, "y", *NullStringToPtr(sql.NullString{String: "y", Valid: true}))

	assert.Nil(t, NullInt32ToPtr(sql.NullInt32{}))
	assert.Equal(t, 15, *NullInt32ToPtr(sql.NullInt32{Int32: 15, Valid: true}))
	v := 20
	assert.Equal(t, sql.NullInt32{Int32: 20, Valid: true}, IntPtrToNullInt32(&v))
	assert.False(t, IntPtrToNullInt32(nil).Valid)
}
