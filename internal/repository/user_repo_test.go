package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Name: "Jane", Email: "jane@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.Equal(t, models.RoleCustomer, user.Role)

	got, err := repo.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	exists, err := repo.ExistsByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Name: "A", Email: "dup@example.com", PasswordHash: "x"}))
	err := repo.Create(ctx, &models.User{Name: "B", Email: "dup@example.com", PasswordHash: "y"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestUserRepository_UpdateFields(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	user := createTestUser(t, db, "a@example.com")

	require.NoError(t, repo.UpdateFields(ctx, user.ID, map[string]interface{}{"name": "Renamed", "phone": "+442079460018"}))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	require.NotNil(t, got.Phone)
	assert.Equal(t, "+442079460018", *got.Phone)
}

func TestUserRepository_ListCustomers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	customer := createTestUser(t, db, "c@example.com")
	require.NoError(t, db.Create(&models.User{Name: "Admin", Email: "admin@example.com", PasswordHash: "x", Role: models.RoleAdmin}).Error)
	room := createTestRoom(t, db, "Suite", 250)
	createTestBooking(t, db, customer.ID, room.ID, date(2024, 1, 1), date(2024, 1, 3), models.BookingStatusPaid)

	users, total, err := repo.ListCustomers(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	require.Len(t, users[0].Bookings, 1)
	require.NotNil(t, users[0].Bookings[0].Room)
	assert.Equal(t, "Suite", users[0].Bookings[0].Room.Name)
}
