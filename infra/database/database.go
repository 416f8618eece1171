package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"adventure/infra/configs"
	"adventure/pkg/log/zlog"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	db   *gorm.DB
	once sync.Once
)

// InitDB 按配置初始化全局连接
func InitDB() {
	once.Do(func() {
		d, err := Open(configs.Config().GetDatabaseConfig())
		if err != nil {
			panic(fmt.Sprintf("数据库连接失败: %v", err))
		}
		db = d
	})
}

// AdventureDB 获取全局连接
func AdventureDB() *gorm.DB {
	return db
}

// Open 根据 driver 打开 mysql 或 sqlite
func Open(conf configs.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(conf.Driver) {
	case "mysql":
		dialector = mysql.Open(conf.MysqlDSN())
	case "sqlite", "":
		if dir := filepath.Dir(conf.SqlitePath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("创建 sqlite 目录失败: %w", err)
			}
		}
		dialector = sqlite.Open(SqliteDSN(conf.SqlitePath))
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %s", conf.Driver)
	}

	d, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel(conf.LogLevel)),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := d.DB()
	if err != nil {
		return nil, err
	}
	if conf.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(conf.MaxOpenConns)
	}
	if conf.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(conf.MaxIdleConns)
	}

	zlog.Infof("数据库连接成功, driver=%s", conf.Driver)
	return d, nil
}

// SqliteDSN sqlite 默认不开外键，级联删除依赖这个参数
func SqliteDSN(path string) string {
	return path + "?_foreign_keys=on&_busy_timeout=5000"
}

func logLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Close 释放连接
func Close() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
