package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	SMTP     SMTPConfig     `mapstructure:"smtp" validate:"required"`
	Workflow WorkflowConfig `mapstructure:"workflow" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName    string `mapstructure:"model_name" validate:"required"`
	// MaxRetries bounds the retry loop around transient provider failures.
	MaxRetries int `mapstructure:"max_retries" validate:"gte=0,lte=10"`
}

// SMTPConfig contains the settings for the outbound mail relay.
type SMTPConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	// From is the sender address stamped on every outgoing message.
	From string `mapstructure:"from" validate:"required,email"`
}

// WorkflowConfig contains the settings for the periodic task workflow.
type WorkflowConfig struct {
	// CronSpec is a standard five-field cron expression controlling how
	// often the workflow fires.
	CronSpec string `mapstructure:"cron_spec" validate:"required"`
	// BatchLimit caps how many pending tasks a single stage processes
	// per workflow run.
	BatchLimit int `mapstructure:"batch_limit" validate:"required,gt=0,lte=100"`
}
