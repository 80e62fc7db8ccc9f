package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ostech2/uhsms/internal/models"
	"github.com/Ostech2/uhsms/internal/testutil"
)

func TestResolveActiveProfileOnly(t *testing.T) {
	db := testutil.NewDB(t)
	r := &SessionResolver{DB: db}
	active := createProfile(t, db, "Ann", "ann@ucu.ac.ug", models.RoleFemaleWarden)
	suspended := createProfile(t, db, "Ben", "ben@ucu.ac.ug", models.RoleMaleWarden)
	require.NoError(t, db.Model(&suspended).Update("status", models.StatusSuspended).Error)

	p, err := r.Resolve(context.Background(), "ANN@ucu.ac.ug")
	require.NoError(t, err)
	assert.Equal(t, active.ID, p.ID)

	_, err = r.Resolve(context.Background(), "ben@ucu.ac.ug")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.Resolve(context.Background(), "nobody@ucu.ac.ug")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDashboardFor(t *testing.T) {
	assert.Equal(t, "admin", DashboardFor(models.RoleAdmin))
	assert.Equal(t, "male-warden", DashboardFor(models.RoleMaleWarden))
	assert.Equal(t, "female-warden", DashboardFor(models.RoleFemaleWarden))
	assert.Equal(t, "login", DashboardFor("student"))
	assert.Equal(t, "login", DashboardFor(""))
}
