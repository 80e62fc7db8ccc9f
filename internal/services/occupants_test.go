package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Ostech2/uhsms/internal/models"
	"github.com/Ostech2/uhsms/internal/scope"
	"github.com/Ostech2/uhsms/internal/testutil"
)

func seedRoom(t *testing.T, db *gorm.DB, hostelType string, capacity int) (models.Hostel, models.Room) {
	t.Helper()
	h := models.Hostel{Name: "Hall " + hostelType, Type: hostelType}
	require.NoError(t, db.Create(&h).Error)
	r := models.Room{HostelID: h.ID, RoomNumber: "101", Capacity: capacity}
	require.NoError(t, db.Create(&r).Error)
	return h, r
}

func occupantInput(roomID, reg string) RegisterOccupantInput {
	return RegisterOccupantInput{
		RoomID:             roomID,
		StudentName:        "Student " + reg,
		RegistrationNumber: reg,
		AccessNumber:       "A" + reg,
		YearOfStudy:        2,
		Semester:           1,
	}
}

func reloadRoom(t *testing.T, db *gorm.DB, id string) models.Room {
	var r models.Room
	require.NoError(t, db.First(&r, "id = ?", id).Error)
	return r
}

func TestRegisterRejectsActiveDuplicate(t *testing.T) {
	db := testutil.NewDB(t)
	svc := &OccupantService{DB: db}
	admin := scope.For(models.UserProfile{ID: "a", Role: models.RoleAdmin})
	_, room := seedRoom(t, db, models.HostelMale, 4)
	ctx := context.Background()

	occ, err := svc.Register(ctx, admin, occupantInput(room.ID, "S21/001"))
	require.NoError(t, err)
	assert.NotNil(t, occ.CheckInDate)

	_, err = svc.Register(ctx, admin, occupantInput(room.ID, " S21/001 "))
	assert.ErrorIs(t, err, ErrDuplicateRegistration)
	assert.Equal(t, "This registration number is already registered. Each registration number can only be used once.", err.Error())

	assert.Equal(t, 1, reloadRoom(t, db, room.ID).CurrentOccupants)

	// after checking out the number can be registered again
	_, err = svc.CheckOut(ctx, admin, occ.ID)
	require.NoError(t, err)
	_, err = svc.Register(ctx, admin, occupantInput(room.ID, "S21/001"))
	assert.NoError(t, err)
}

func TestRegisterEnforcesCapacityAndStatus(t *testing.T) {
	db := testutil.NewDB(t)
	svc := &OccupantService{DB: db}
	admin := scope.For(models.UserProfile{ID: "a", Role: models.RoleAdmin})
	_, room := seedRoom(t, db, models.HostelFemale, 2)
	ctx := context.Background()

	first, err := svc.Register(ctx, admin, occupantInput(room.ID, "R1"))
	require.NoError(t, err)
	assert.Equal(t, models.RoomAvailable, reloadRoom(t, db, room.ID).Status)

	_, err = svc.Register(ctx, admin, occupantInput(room.ID, "R2"))
	require.NoError(t, err)
	r := reloadRoom(t, db, room.ID)
	assert.Equal(t, 2, r.CurrentOccupants)
	assert.Equal(t, models.RoomOccupied, r.Status)

	_, err = svc.Register(ctx, admin, occupantInput(room.ID, "R3"))
	assert.ErrorIs(t, err, ErrRoomFull)

	var count int64
	require.NoError(t, db.Model(&models.RoomOccupant{}).Where("registration_number = ?", "R3").Count(&count).Error)
	assert.EqualValues(t, 0, count)

	require.NoError(t, svc.Delete(ctx, admin, first.ID))
	r = reloadRoom(t, db, room.ID)
	assert.Equal(t, 1, r.CurrentOccupants)
	assert.Equal(t, models.RoomAvailable, r.Status)
}

func TestRegisterRespectsScope(t *testing.T) {
	db := testutil.NewDB(t)
	svc := &OccupantService{DB: db}
	_, femaleRoom := seedRoom(t, db, models.HostelFemale, 2)
	male := scope.For(models.UserProfile{ID: "w", Role: models.RoleMaleWarden})

	_, err := svc.Register(context.Background(), male, occupantInput(femaleRoom.ID, "R1"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCheckOutTwice(t *testing.T) {
	db := testutil.NewDB(t)
	svc := &OccupantService{DB: db}
	admin := scope.For(models.UserProfile{ID: "a", Role: models.RoleAdmin})
	_, room := seedRoom(t, db, models.HostelMale, 1)
	ctx := context.Background()

	occ, err := svc.Register(ctx, admin, occupantInput(room.ID, "R1"))
	require.NoError(t, err)
	out, err := svc.CheckOut(ctx, admin, occ.ID)
	require.NoError(t, err)
	assert.False(t, out.Active())
	assert.Equal(t, 0, reloadRoom(t, db, room.ID).CurrentOccupants)

	_, err = svc.CheckOut(ctx, admin, occ.ID)
	assert.ErrorIs(t, err, ErrAlreadyCheckedOut)

	active, err := svc.List(ctx, admin, OccupantFilter{RoomID: room.ID, ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, active)
	all, err := svc.List(ctx, admin, OccupantFilter{RoomID: room.ID})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestImportCSV(t *testing.T) {
	db := testutil.NewDB(t)
	svc := &OccupantService{DB: db}
	admin := scope.For(models.UserProfile{ID: "a", Role: models.RoleAdmin})
	hostel, room := seedRoom(t, db, models.HostelMale, 3)

	csvData := "\ufeffStudent_Name;Registration_Number;Access_Number;Year_Of_Study;Semester;Hostel_Name;Room_Number\r\n" +
		"Ann;R1;A1;1;1;" + hostel.Name + ";101\r\n" +
		"Ben;R1;A2;1;1;" + hostel.Name + ";101\r\n" +
		"Cal;R3;A3;2;2;" + hostel.Name + ";999\r\n" +
		";R4;A4;2;2;" + hostel.Name + ";101\r\n"

	res, err := svc.Import(context.Background(), admin, []byte(csvData))
	require.NoError(t, err)
	assert.Equal(t, 4, res.TotalRows)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 3, res.Failed)
	require.Len(t, res.Errors, 3)
	assert.Equal(t, 3, res.Errors[0].Row)
	assert.Equal(t, ErrDuplicateRegistration.Error(), res.Errors[0].Error)
	assert.Contains(t, res.Errors[1].Error, "not found")
	assert.Equal(t, "Student name is required", res.Errors[2].Error)
	assert.Equal(t, 1, reloadRoom(t, db, room.ID).CurrentOccupants)

	_, err = svc.Import(context.Background(), admin, []byte("name,email\nx,y\n"))
	assert.True(t, errors.Is(err, ErrInvalidCSV))
	_, err = svc.Import(context.Background(), admin, []byte("   "))
	assert.ErrorIs(t, err, ErrInvalidCSV)
}

func TestIsDuplicateKey(t *testing.T) {
	assert.False(t, isDuplicateKey(nil))
	assert.True(t, isDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateKey(errors.New("UNIQUE constraint failed: room_occupants.registration_number")))
	assert.True(t, isDuplicateKey(errors.New(`ERROR: duplicate key value violates unique constraint`)))
	assert.False(t, isDuplicateKey(errors.New("connection refused")))
}

func TestActiveRegistrationIndex(t *testing.T) {
	db := testutil.NewDB(t)
	_, room := seedRoom(t, db, models.HostelMale, 4)
	occupant := func(reg string) models.RoomOccupant {
		return models.RoomOccupant{
			RoomID:             room.ID,
			StudentName:        "Student " + reg,
			RegistrationNumber: reg,
			AccessNumber:       "A" + reg,
			YearOfStudy:        1,
			Semester:           1,
		}
	}

	first := occupant("S22/100")
	require.NoError(t, db.Create(&first).Error)

	// a second active row is refused by the index itself
	dup := occupant("S22/100")
	err := db.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, isDuplicateKey(err))

	again := occupant("S22/100")
	assert.ErrorIs(t, insertOccupant(db, &again), ErrDuplicateRegistration)

	// checked-out rows sit outside the index
	left := time.Now()
	past := occupant("S22/100")
	past.CheckOutDate = &left
	require.NoError(t, insertOccupant(db, &past))
	older := occupant("S22/100")
	older.CheckOutDate = &left
	require.NoError(t, insertOccupant(db, &older))

	var count int64
	require.NoError(t, db.Model(&models.RoomOccupant{}).Where("registration_number = ?", "S22/100").Count(&count).Error)
	assert.EqualValues(t, 3, count)
}

func TestRegisterRefusesUnavailableRooms(t *testing.T) {
	db := testutil.NewDB(t)
	svc := &OccupantService{DB: db}
	admin := scope.For(models.UserProfile{ID: "a", Role: models.RoleAdmin})
	_, room := seedRoom(t, db, models.HostelMale, 4)
	ctx := context.Background()

	for _, status := range []string{models.RoomMaintenance, models.RoomClosed} {
		require.NoError(t, db.Model(&models.Room{}).Where("id = ?", room.ID).Update("status", status).Error)
		_, err := svc.Register(ctx, admin, occupantInput(room.ID, "R-"+status))
		assert.ErrorIs(t, err, ErrRoomUnavailable, status)
	}
	assert.Equal(t, 0, reloadRoom(t, db, room.ID).CurrentOccupants)

	require.NoError(t, db.Model(&models.Room{}).Where("id = ?", room.ID).Update("status", models.RoomAvailable).Error)
	_, err := svc.Register(ctx, admin, occupantInput(room.ID, "R-open"))
	assert.NoError(t, err)
}
