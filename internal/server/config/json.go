package config

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/mbayed/filevault/internal/flagx"
)

// Duration wraps time.Duration so JSON config files can specify intervals
// either as strings ("2h") or as integer nanoseconds.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
	default:
		return errors.New("invalid duration")
	}
	return nil
}

// jsonConfig is the intermediate DTO used only for reading the JSON
// configuration file; its values are copied into the runtime Config.
type jsonConfig struct {
	EndpointAddr          string   `json:"endpoint_addr"`
	DatabaseDSN           string   `json:"database_dsn"`
	SecretKey             string   `json:"secret_key"`
	TokenValidityDuration Duration `json:"token_validity_duration"`

	S3AccessKeyID     string `json:"s3_access_key_id"`
	S3SecretAccessKey string `json:"s3_secret_access_key"`
	S3Bucket          string `json:"s3_bucket"`
	S3Region          string `json:"s3_region"`
	S3BaseEndpoint    string `json:"s3_base_endpoint"`
	S3UploadFolder    string `json:"s3_upload_folder"`

	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUsername string `json:"smtp_username"`
	SMTPPassword string `json:"smtp_password"`
	SMTPFrom     string `json:"smtp_from"`

	RecoveryCodeMin int      `json:"recovery_code_min"`
	RecoveryCodeMax int      `json:"recovery_code_max"`
	RecoveryCodeTTL Duration `json:"recovery_code_ttl"`
}

// parseJson overlays values from the JSON file named by the -c/-config flag
// onto the provided Config. Nothing happens when the flag is absent; an
// unreadable or invalid file panics, since the server cannot start with a
// half-applied configuration.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &jsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.TokenValidityDuration = c.TokenValidityDuration.Duration

	config.S3AccessKeyID = c.S3AccessKeyID
	config.S3SecretAccessKey = c.S3SecretAccessKey
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.S3UploadFolder = c.S3UploadFolder

	config.SMTPHost = c.SMTPHost
	config.SMTPPort = c.SMTPPort
	config.SMTPUsername = c.SMTPUsername
	config.SMTPPassword = c.SMTPPassword
	config.SMTPFrom = c.SMTPFrom

	config.RecoveryCodeMin = c.RecoveryCodeMin
	config.RecoveryCodeMax = c.RecoveryCodeMax
	config.RecoveryCodeTTL = c.RecoveryCodeTTL.Duration
}
