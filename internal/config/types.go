package config

type Config struct {
	// Cron spec for scheduled syncs when not running with -single-run.
	UpdateFrequency string

	API    APIConfig
	Sync   SyncConfig
	Influx InfluxConfig
	SQL    SQLConfig
}

type APIConfig struct {
	BaseURL string `json:"baseUrl"`
}

type SyncConfig struct {
	// Fidelity is the number of calendar days folded into one summary window.
	Fidelity int
	// SelectedDate picks the reported window by its representative date.
	// Empty means no selection.
	SelectedDate string
}

type InfluxConfig struct {
	Database             string
	SummariesMeasurement string
}

type SQLConfig struct {
	Database          string
	TransactionsTable string
}

type Secrets struct {
	Pilea  PileaSecrets `json:"pilea"`
	Influx InfluxSecrets
	SQL    SqlSecrets

	// Alternative to the SQL struct, designed to be used with a heroku
	// style environment variable.
	DatabaseURL string `env:"DATABASE_URL"`
}

type PileaSecrets struct {
	Username string `json:"username" env:"PILEA_USERNAME"`
	Password string `json:"password" env:"PILEA_PASSWORD"`
}

type InfluxSecrets struct {
	InfluxEndpoint string `env:"INFLUX_ENDPOINT"`
	InfluxUsername string `env:"INFLUX_USERNAME"`
	InfluxPassword string `env:"INFLUX_PASSWORD"`
}

type SqlSecrets struct {
	SqlHost     string `env:"SQL_HOST"`
	SqlUsername string `env:"SQL_USERNAME"`
	SqlPassword string `env:"SQL_PASSWORD"`
}
