package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dvolkovs/filevault/internal/flagx"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. Duration fields are strings in time.ParseDuration
// syntax ("24h", "30m").
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files; its set fields are copied into the runtime
// Config struct.
type JsonConfig struct {
	EndpointAddrHTTP string `json:"endpoint_addr_http"`
	DatabaseDSN      string `json:"database_dsn"`
	RedisAddr        string `json:"redis_addr"`
	AMQPURL          string `json:"amqp_url"`
	QueueName        string `json:"queue_name"`
	SessionTTL       string `json:"session_ttl"`
	BlobBackend      string `json:"blob_backend"`
	FolderPath       string `json:"folder_path"`
	S3RootUser       string `json:"s3_root_user"`
	S3RootPassword   string `json:"s3_root_password"`
	S3Bucket         string `json:"s3_bucket"`
	S3Region         string `json:"s3_region"`
	S3BaseEndpoint   string `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags; when
// neither is set, no JSON file is loaded. Absent fields keep their
// current values. If the file cannot be read or contains invalid JSON,
// the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.AMQPURL, c.AMQPURL)
	setString(&config.QueueName, c.QueueName)
	setString(&config.BlobBackend, c.BlobBackend)
	setString(&config.FolderPath, c.FolderPath)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.SessionTTL != "" {
		d, err := time.ParseDuration(c.SessionTTL)
		if err != nil {
			panic(err)
		}
		config.SessionTTL = d
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
