package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ostech2/uhsms/internal/models"
	"github.com/Ostech2/uhsms/internal/scope"
	"github.com/Ostech2/uhsms/internal/testutil"
	"github.com/Ostech2/uhsms/internal/validation"
)

func TestOptionalUUID(t *testing.T) {
	id, err := optionalUUID("  ")
	assert.NoError(t, err)
	assert.Nil(t, id)

	id, err = optionalUUID(" 6F9619FF-8B86-D011-B42D-00C04FC964FF ")
	assert.NoError(t, err)
	if assert.NotNil(t, id) {
		assert.Equal(t, "6f9619ff-8b86-d011-b42d-00c04fc964ff", *id)
	}

	_, err = optionalUUID("room-1")
	assert.Error(t, err)
}

func TestPlacement(t *testing.T) {
	db := testutil.NewDB(t)
	maleHostel, maleRoom := seedRoom(t, db, models.HostelMale, 2)
	femaleHostel, femaleRoom := seedRoom(t, db, models.HostelFemale, 2)
	admin := scope.For(models.UserProfile{ID: "a", Role: models.RoleAdmin})
	male := scope.For(models.UserProfile{ID: "w", Role: models.RoleMaleWarden})

	fieldErr := func(t *testing.T, err error, field, msg string) {
		t.Helper()
		verr, ok := validation.As(err)
		require.True(t, ok, "want a field error, got %v", err)
		assert.Equal(t, msg, verr.Fields[field])
	}

	hostelID, roomID, err := Placement(db, male, "", maleRoom.ID)
	require.NoError(t, err)
	require.NotNil(t, hostelID)
	assert.Equal(t, maleHostel.ID, *hostelID)
	require.NotNil(t, roomID)
	assert.Equal(t, maleRoom.ID, *roomID)

	_, _, err = Placement(db, male, "", "")
	fieldErr(t, err, "hostel_id", "Select a hostel")

	_, _, err = Placement(db, male, femaleHostel.ID, "")
	fieldErr(t, err, "hostel_id", "Hostel not found")

	_, _, err = Placement(db, male, maleHostel.ID, femaleRoom.ID)
	fieldErr(t, err, "room_id", "Room not found")

	_, _, err = Placement(db, admin, maleHostel.ID, femaleRoom.ID)
	fieldErr(t, err, "room_id", "Room does not belong to the selected hostel")

	_, _, err = Placement(db, male, "nope", "")
	fieldErr(t, err, "hostel_id", "Invalid identifier")

	hostelID, roomID, err = Placement(db, admin, "", "")
	require.NoError(t, err)
	assert.Nil(t, hostelID)
	assert.Nil(t, roomID)
}
