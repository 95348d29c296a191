package config

import (
	"os"
	"time"
)

// parseEnv overlays Config fields from environment variables. PORT keeps
// its historical meaning of a bare port number for the HTTP endpoint.
//
// Recognized variables:
//
//	PORT             HTTP port (bind address becomes ":<port>")
//	DATABASE_DSN     PostgreSQL DSN
//	REDIS_ADDR       Redis address (host:port)
//	AMQP_URL         RabbitMQ connection URL
//	QUEUE_NAME       thumbnail queue name
//	SESSION_TTL      token lifetime, time.ParseDuration syntax
//	BLOB_BACKEND     "disk" or "s3"
//	FOLDER_PATH      blob directory for the disk backend
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT
func parseEnv(config *Config) {
	if v := os.Getenv("PORT"); v != "" {
		config.EndpointAddrHTTP = ":" + v
	}
	setString(&config.DatabaseDSN, os.Getenv("DATABASE_DSN"))
	setString(&config.RedisAddr, os.Getenv("REDIS_ADDR"))
	setString(&config.AMQPURL, os.Getenv("AMQP_URL"))
	setString(&config.QueueName, os.Getenv("QUEUE_NAME"))
	setString(&config.BlobBackend, os.Getenv("BLOB_BACKEND"))
	setString(&config.FolderPath, os.Getenv("FOLDER_PATH"))
	setString(&config.S3RootUser, os.Getenv("S3_ROOT_USER"))
	setString(&config.S3RootPassword, os.Getenv("S3_ROOT_PASSWORD"))
	setString(&config.S3Bucket, os.Getenv("S3_BUCKET"))
	setString(&config.S3Region, os.Getenv("S3_REGION"))
	setString(&config.S3BaseEndpoint, os.Getenv("S3_BASE_ENDPOINT"))

	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.SessionTTL = d
	}
}
