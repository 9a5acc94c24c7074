// Package config 负责加载和管理应用程序的配置。
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Admin         AdminConfig         `mapstructure:"admin"`
	Log           LogConfig           `mapstructure:"log"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	Dataset       DatasetConfig       `mapstructure:"dataset"`
	Index         IndexConfig         `mapstructure:"index"`
	OMDb          OMDbConfig          `mapstructure:"omdb"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig 存储 JWT 相关的配置。
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
	RefreshTokenExpireDays int    `mapstructure:"refresh_token_expire_days"`
}

// AdminConfig 存储管理员账号的配置。密码以 bcrypt 哈希形式保存。
type AdminConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// KafkaConfig 存储 Kafka 相关的配置。
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

// ElasticsearchConfig 存储 Elasticsearch 相关的配置。
type ElasticsearchConfig struct {
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// MinIOConfig 存储 MinIO 对象存储的配置。
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// DatasetConfig 存储原始电影数据集的获取配置。
// 查找顺序：本地文件 -> MinIO 对象 -> 远程 URL 下载。
type DatasetConfig struct {
	LocalPath  string `mapstructure:"local_path"`
	ObjectName string `mapstructure:"object_name"`
	RemoteURL  string `mapstructure:"remote_url"`
}

// IndexConfig 存储向量索引构建与持久化的配置。
type IndexConfig struct {
	Dir          string `mapstructure:"dir"`
	MaxFeatures  int    `mapstructure:"max_features"`
	DefaultTopK  int    `mapstructure:"default_top_k"`
	ObjectPrefix string `mapstructure:"object_prefix"`
}

// OMDbConfig 存储 OMDb 元数据查询服务的配置。
type OMDbConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	CacheTTLHours  int    `mapstructure:"cache_ttl_hours"`
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
func Init(configPath string) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("读取配置文件失败: %w", err))
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("无法将配置解析到结构体中: %w", err))
	}

	applyDefaults(&Conf)
}

// applyDefaults 为可选配置项填充默认值。
func applyDefaults(c *Config) {
	if c.Index.MaxFeatures <= 0 {
		c.Index.MaxFeatures = 5000
	}
	if c.Index.DefaultTopK <= 0 {
		c.Index.DefaultTopK = 5
	}
	if c.OMDb.TimeoutSeconds <= 0 {
		c.OMDb.TimeoutSeconds = 5
	}
	if c.OMDb.CacheTTLHours <= 0 {
		c.OMDb.CacheTTLHours = 24
	}
	if c.OMDb.BaseURL == "" {
		c.OMDb.BaseURL = "http://www.omdbapi.com/"
	}
}

// Validate 校验必要配置项。缺失外部凭证属于配置错误，必须在服务启动前快速失败。
func (c *Config) Validate() error {
	if c.OMDb.APIKey == "" {
		return errors.New("缺少 OMDb API Key (omdb.api_key)，无法提供元数据查询")
	}
	if c.JWT.Secret == "" {
		return errors.New("缺少 JWT 密钥 (jwt.secret)")
	}
	if c.Admin.Username == "" || c.Admin.PasswordHash == "" {
		return errors.New("缺少管理员账号配置 (admin.username / admin.password_hash)")
	}
	if c.Dataset.LocalPath == "" {
		return errors.New("缺少数据集本地路径配置 (dataset.local_path)")
	}
	if c.Index.Dir == "" {
		return errors.New("缺少索引目录配置 (index.dir)")
	}
	return nil
}
