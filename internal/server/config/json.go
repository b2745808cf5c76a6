package config

import (
	"encoding/json"
	"os"

	"github.com/dberzins/inkwell/internal/flagx"
	"github.com/dberzins/inkwell/internal/timex"
)

// JsonConfig is an intermediate DTO used only for reading JSON
// configuration files. Duration fields accept either strings like "24h"
// or integer nanoseconds (timex.Duration). After unmarshalling, set
// fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr            *string         `json:"endpoint_addr"`
	DatabaseDSN             *string         `json:"database_dsn"`
	SecretKey               *string         `json:"secret_key"`
	SessionValidityDuration *timex.Duration `json:"session_validity_duration"`
	SessionSweepInterval    *timex.Duration `json:"session_sweep_interval"`
	AdminUserID             *int64          `json:"admin_user_id"`
	CORSAllowedOrigins      []string        `json:"cors_allowed_origins"`
	S3AccessKey             *string         `json:"s3_access_key"`
	S3SecretKey             *string         `json:"s3_secret_key"`
	S3Bucket                *string         `json:"s3_bucket"`
	S3Region                *string         `json:"s3_region"`
	S3BaseEndpoint          *string         `json:"s3_base_endpoint"`
	MailRegion              *string         `json:"mail_region"`
	MailSender              *string         `json:"mail_sender"`
	ContactRecipient        *string         `json:"contact_recipient"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config. The file path comes from the -c/-config flags; when neither is
// set, nothing is loaded. Unreadable or invalid files panic: a present
// but broken config file is a deployment error, not a condition to limp
// through.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != nil {
		config.EndpointAddr = *c.EndpointAddr
	}
	if c.DatabaseDSN != nil {
		config.DatabaseDSN = *c.DatabaseDSN
	}
	if c.SecretKey != nil {
		config.SecretKey = *c.SecretKey
	}
	if c.SessionValidityDuration != nil {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.SessionSweepInterval != nil {
		config.SessionSweepInterval = c.SessionSweepInterval.Duration
	}
	if c.AdminUserID != nil {
		config.AdminUserID = *c.AdminUserID
	}
	if c.CORSAllowedOrigins != nil {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	if c.S3AccessKey != nil {
		config.S3AccessKey = *c.S3AccessKey
	}
	if c.S3SecretKey != nil {
		config.S3SecretKey = *c.S3SecretKey
	}
	if c.S3Bucket != nil {
		config.S3Bucket = *c.S3Bucket
	}
	if c.S3Region != nil {
		config.S3Region = *c.S3Region
	}
	if c.S3BaseEndpoint != nil {
		config.S3BaseEndpoint = *c.S3BaseEndpoint
	}
	if c.MailRegion != nil {
		config.MailRegion = *c.MailRegion
	}
	if c.MailSender != nil {
		config.MailSender = *c.MailSender
	}
	if c.ContactRecipient != nil {
		config.ContactRecipient = *c.ContactRecipient
	}
}
