package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/hotel-booking-backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))
	return db
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	phone := "+12015550123"
	user := &models.User{Name: "Guest", Email: email, PasswordHash: "x", Phone: &phone, Role: models.RoleCustomer}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestRoom(t *testing.T, db *gorm.DB, name string, price float64) *models.Room {
	room := &models.Room{Name: name, Description: "test", Price: price, Capacity: 2, Available: true}
	require.NoError(t, db.Create(room).Error)
	return room
}

func createTestBooking(t *testing.T, db *gorm.DB, userID, roomID int64, in, out time.Time, status string) *models.Booking {
	b := &models.Booking{
		BookingNo: "BK" + in.Format("20060102") + status + time.Now().Format("150405.000000000"),
		UserID:    userID,
		RoomID:    roomID,
		CheckIn:   in,
		CheckOut:  out,
		Guests:    1,
		Status:    status,
	}
	require.NoError(t, db.Create(b).Error)
	return b
}
