package app

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/stockerhq/stocker/config"
	"github.com/stockerhq/stocker/internal/domain"
	"github.com/stockerhq/stocker/pkg/common"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func getDatabase(conf config.DBConfig, workdir string) *gorm.DB {
	logLevel := gormlogger.Warn
	if conf.Debug {
		logLevel = gormlogger.Info
	}
	gormConfig := &gorm.Config{Logger: gormlogger.Default.LogMode(logLevel)}

	var (
		db  *gorm.DB
		err error
	)
	switch conf.Type {
	case "sqlite", "sqlite3":
		dbfile := filepath.Join(workdir, "data", conf.Name+".db")
		db, err = gorm.Open(sqlite.Open(dbfile), gormConfig)
	default:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=UTC",
			conf.Host, conf.User, conf.Passwd, conf.Name, conf.Port)
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
	}
	if err != nil {
		panic(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	if conf.MaxConn > 0 {
		sqlDB.SetMaxOpenConns(conf.MaxConn)
	}
	if conf.IdleConn > 0 {
		sqlDB.SetMaxIdleConns(conf.IdleConn)
	}

	return db
}

// checkSuper makes sure a staff-level admin account always exists.
func (a *Application) checkSuper() {
	const superUsername = "admin"
	const defaultPassword = "stocker"

	hashed, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("failed to hash default admin password", zap.Error(err))
		return
	}

	var user domain.SysUser
	err = a.gormDB.Where("username = ?", superUsername).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.SysUser{
			ID:        common.UUIDint64(),
			Realname:  "administrator",
			Email:     "N/A",
			Username:  superUsername,
			Password:  string(hashed),
			Level:     domain.UserLevelStaff,
			Status:    common.ENABLED,
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default admin account", zap.String("username", superUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query default admin", zap.Error(err))
		return
	}

	resetLevel := user.Level != domain.UserLevelStaff
	resetStatus := user.Status != common.ENABLED
	if !resetLevel && !resetStatus {
		return
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if resetLevel {
		updates["level"] = domain.UserLevelStaff
	}
	if resetStatus {
		updates["status"] = common.ENABLED
	}
	if err := a.gormDB.Model(&domain.SysUser{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair default admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default admin account",
		zap.String("username", superUsername),
		zap.Bool("levelReset", resetLevel),
		zap.Bool("statusEnabled", resetStatus))
}

// checkCategories seeds a starter set of pharmacy categories on first boot.
func (a *Application) checkCategories() {
	defaultCategories := []domain.Category{
		{Name: "Analgesics", Description: "Pain relief"},
		{Name: "Antibiotics", Description: "Anti-bacterial"},
		{Name: "Antihistamines", Description: "Allergy relief"},
		{Name: "Vitamins", Description: "Supplements"},
	}

	for _, cat := range defaultCategories {
		var count int64
		a.gormDB.Model(&domain.Category{}).Where("name = ?", cat.Name).Count(&count)
		if count == 0 {
			cat.CreatedAt = time.Now()
			cat.UpdatedAt = time.Now()
			if err := a.gormDB.Create(&cat).Error; err != nil {
				zap.L().Error("failed to create default category", zap.String("name", cat.Name), zap.Error(err))
			} else {
				zap.L().Info("initialized default category", zap.String("name", cat.Name))
			}
		}
	}
}
