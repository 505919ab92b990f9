// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Log           LogConfig           `mapstructure:"log"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	Agent         AgentConfig         `mapstructure:"agent"`
	Upload        UploadConfig        `mapstructure:"upload"`
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

// AgentConfig 存储分析 Agent 服务相关的配置。
// PollIntervalSeconds 为轮询结果的间隔，PollBudgetSeconds 为单个任务允许的
// 最长等待时间，超出后按超时降级处理。
type AgentConfig struct {
	BaseURL              string `mapstructure:"base_url"`
	SubmitTimeoutSeconds int    `mapstructure:"submit_timeout_seconds"`
	PollIntervalSeconds  int    `mapstructure:"poll_interval_seconds"`
	PollBudgetSeconds    int    `mapstructure:"poll_budget_seconds"`
}

// PollInterval 返回轮询间隔，未配置时使用 2 秒。
func (c AgentConfig) PollInterval() time.Duration {
	if c.PollIntervalSeconds <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// PollBudget 返回轮询总预算，未配置时使用 120 秒。
func (c AgentConfig) PollBudget() time.Duration {
	if c.PollBudgetSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.PollBudgetSeconds) * time.Second
}

// SubmitTimeout 返回提交任务的超时时间，未配置时使用 10 秒。
func (c AgentConfig) SubmitTimeout() time.Duration {
	if c.SubmitTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.SubmitTimeoutSeconds) * time.Second
}

// UploadConfig 存储上传文档的限制配置。
type UploadConfig struct {
	MaxSizeMB int `mapstructure:"max_size_mb"`
}

// MaxSize 返回单个上传文档的大小上限，未配置时为 10MB，与前端限制一致。
func (c UploadConfig) MaxSize() int64 {
	if c.MaxSizeMB <= 0 {
		return 10 * 1024 * 1024
	}
	return int64(c.MaxSizeMB) * 1024 * 1024
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
}
