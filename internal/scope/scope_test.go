package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Ostech2/uhsms/internal/models"
	"github.com/Ostech2/uhsms/internal/scope"
	"github.com/Ostech2/uhsms/internal/testutil"
)

type fixture struct {
	male, female, mixed models.Hostel
	maleRoom, femRoom   models.Room
}

func seed(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	f := fixture{
		male:   models.Hostel{Name: "Nkrumah", Type: models.HostelMale},
		female: models.Hostel{Name: "Mary Stuart", Type: models.HostelFemale},
		mixed:  models.Hostel{Name: "Graduate", Type: models.HostelMixed},
	}
	require.NoError(t, db.Create(&f.male).Error)
	require.NoError(t, db.Create(&f.female).Error)
	require.NoError(t, db.Create(&f.mixed).Error)

	f.maleRoom = models.Room{HostelID: f.male.ID, RoomNumber: "M1", Capacity: 2}
	f.femRoom = models.Room{HostelID: f.female.ID, RoomNumber: "F1", Capacity: 2}
	require.NoError(t, db.Create(&f.maleRoom).Error)
	require.NoError(t, db.Create(&f.femRoom).Error)

	require.NoError(t, db.Create(&models.RoomOccupant{RoomID: f.maleRoom.ID, StudentName: "Ben", RegistrationNumber: "R1"}).Error)
	require.NoError(t, db.Create(&models.RoomOccupant{RoomID: f.femRoom.ID, StudentName: "Ann", RegistrationNumber: "R2"}).Error)

	for _, h := range []models.Hostel{f.male, f.female, f.mixed} {
		id := h.ID
		require.NoError(t, db.Create(&models.InventoryItem{Name: "Bed " + h.Name, CategoryID: "c", HostelID: &id, Quantity: 1}).Error)
	}
	require.NoError(t, db.Create(&models.InventoryItem{Name: "Unplaced", CategoryID: "c", Quantity: 1}).Error)
	return f
}

func TestForDerivesHostelType(t *testing.T) {
	assert.Equal(t, models.HostelMale, scope.For(models.UserProfile{Role: models.RoleMaleWarden}).HostelType)
	assert.Equal(t, models.HostelFemale, scope.For(models.UserProfile{Role: models.RoleFemaleWarden}).HostelType)
	admin := scope.For(models.UserProfile{Role: models.RoleAdmin})
	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.CanSeeHostelType(models.HostelMixed))
	assert.False(t, scope.For(models.UserProfile{Role: models.RoleMaleWarden}).CanSeeHostelType(models.HostelMixed))
}

func TestScopesPartitionByHostelType(t *testing.T) {
	db := testutil.NewDB(t)
	f := seed(t, db)

	cases := []struct {
		role                             string
		hostels, rooms, items, occupants int
	}{
		{models.RoleAdmin, 3, 2, 4, 2},
		{models.RoleMaleWarden, 1, 1, 1, 1},
		{models.RoleFemaleWarden, 1, 1, 1, 1},
		{"student", 0, 0, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.role, func(t *testing.T) {
			s := scope.For(models.UserProfile{ID: "u", Role: tc.role})

			var hostels []models.Hostel
			require.NoError(t, db.Scopes(s.Hostels()).Find(&hostels).Error)
			assert.Len(t, hostels, tc.hostels)

			var rooms []models.Room
			require.NoError(t, db.Scopes(s.Rooms()).Find(&rooms).Error)
			assert.Len(t, rooms, tc.rooms)

			var items []models.InventoryItem
			require.NoError(t, db.Scopes(s.Inventory()).Find(&items).Error)
			assert.Len(t, items, tc.items)

			var occupants []models.RoomOccupant
			require.NoError(t, db.Scopes(s.Occupants()).Find(&occupants).Error)
			assert.Len(t, occupants, tc.occupants)
		})
	}

	var rooms []models.Room
	female := scope.For(models.UserProfile{Role: models.RoleFemaleWarden})
	require.NoError(t, db.Scopes(female.Rooms()).Find(&rooms).Error)
	require.Len(t, rooms, 1)
	assert.Equal(t, f.femRoom.ID, rooms[0].ID)
}

func TestApprovalsScope(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, db.Create(&models.WardenApproval{WardenID: "w1", RequestType: models.RequestMaintenance}).Error)
	require.NoError(t, db.Create(&models.WardenApproval{WardenID: "w2", RequestType: models.RequestMaintenance}).Error)

	var all []models.WardenApproval
	require.NoError(t, db.Scopes(scope.For(models.UserProfile{Role: models.RoleAdmin}).Approvals()).Find(&all).Error)
	assert.Len(t, all, 2)

	var own []models.WardenApproval
	w1 := scope.For(models.UserProfile{ID: "w1", Role: models.RoleMaleWarden})
	require.NoError(t, db.Scopes(w1.Approvals()).Find(&own).Error)
	require.Len(t, own, 1)
	assert.Equal(t, "w1", own[0].WardenID)
}
