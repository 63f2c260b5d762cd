package configs

import (
	"fmt"

	"github.com/spf13/viper"
)

// DBType 数据库协议族。postgre/pg、mariadb 是常见写法的别名，
// 注册 dialector 时一并挂到同一个工厂上.
type DBType string

const (
	PostgreSQL DBType = "postgresql"
	Postgres   DBType = "postgre"
	Pg         DBType = "pg"

	MySQL   DBType = "mysql"
	MariaDB DBType = "mariadb"

	SQLite DBType = "sqlite"
)

// DBConfig 数据库配置。SQLite 只用 Database 字段作为文件名.
type DBConfig struct {
	Type         DBType `mapstructure:"type"           rule:"oneof=postgresql postgre pg mysql mariadb sqlite"`
	Host         string `mapstructure:"host"           rule:"hostname"`
	Port         int    `mapstructure:"port"           rule:"min=1,max=65535"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns" rule:"min=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" rule:"min=0"`
}

// GetDBType 返回数据库协议族的展示名.
func (c *DBConfig) GetDBType() string {
	switch c.Type {
	case PostgreSQL, Postgres, Pg:
		return "PostgreSQL"
	case MySQL, MariaDB:
		return "MySQL"
	case SQLite:
		return "SQLite"
	default:
		return "Unknown"
	}
}

// GetDSN 按协议族拼连接串，未知类型返回空串，由上层报错.
func (c *DBConfig) GetDSN() string {
	switch c.Type {
	case PostgreSQL, Postgres, Pg:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
	case MySQL, MariaDB:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User, c.Password, c.Host, c.Port, c.Database)
	case SQLite:
		return fmt.Sprintf("file:%s.db", c.Database)
	default:
		return ""
	}
}

func (c *DBConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("db.type", SQLite)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.database", "docshield")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open_conns", 0) // 0 表示不限制
	v.SetDefault("db.max_idle_conns", 5)
}
