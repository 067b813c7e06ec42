package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

func TestRoomRepository_CRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	room := &models.Room{Name: "Deluxe Room", Description: "Sea view", Price: 150, Capacity: 2, Available: true}
	require.NoError(t, repo.Create(ctx, room))

	got, err := repo.GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "Deluxe Room", got.Name)
	assert.True(t, got.Available)

	require.NoError(t, repo.UpdateFields(ctx, room.ID, map[string]interface{}{"available": false, "price": 0.0}))
	got, err = repo.GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.False(t, got.Available)
	assert.Zero(t, got.Price)

	require.NoError(t, repo.Delete(ctx, room.ID))
	_, err = repo.GetByID(ctx, room.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, room.ID), gorm.ErrRecordNotFound)
}

func TestRoomRepository_CreateUnavailable(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	room := &models.Room{Name: "Closed", Description: "-", Price: 80, Capacity: 1, Available: false}
	require.NoError(t, repo.Create(ctx, room))

	got, err := repo.GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.False(t, got.Available)
}

func TestRoomRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()

	createTestRoom(t, db, "Standard Room", 100)
	closed := createTestRoom(t, db, "Suite", 250)
	require.NoError(t, repo.UpdateFields(ctx, closed.ID, map[string]interface{}{"available": false}))

	all, err := repo.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	open, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "Standard Room", open[0].Name)
}

func TestRoomRepository_HasBlockingBookings(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRoomRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "a@example.com")
	room := createTestRoom(t, db, "Suite", 250)

	createTestBooking(t, db, user.ID, room.ID, date(2024, 1, 1), date(2024, 1, 2), models.BookingStatusPending)
	has, err := repo.HasBlockingBookings(ctx, room.ID)
	require.NoError(t, err)
	assert.False(t, has)

	createTestBooking(t, db, user.ID, room.ID, date(2024, 1, 3), date(2024, 1, 4), models.BookingStatusPaid)
	has, err = repo.HasBlockingBookings(ctx, room.ID)
	require.NoError(t, err)
	assert.True(t, has)
}
