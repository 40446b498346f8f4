package auth

import "time"

// Config holds the settings of the authentication service.
type Config struct {
	JWTSecret          string        `env:"JWT_SECRET,required"`
	JWTIssuer          string        `env:"JWT_ISSUER" envDefault:"mfagate"`
	JWTLeeway          time.Duration `env:"JWT_LEEWAY" envDefault:"5s"`
	PendingTokenTTL    time.Duration `env:"JWT_PENDING_TTL" envDefault:"10m"`
	FullTokenTTL       time.Duration `env:"JWT_FULL_TTL" envDefault:"24h"`
	EmailEncryptionKey string        `env:"EMAIL_ENCRYPTION_KEY,required"`
	TOTPSecretKey      string        `env:"TOTP_SECRET_KEY"` // falls back to EMAIL_ENCRYPTION_KEY
	BcryptCost         int           `env:"BCRYPT_COST" envDefault:"12"`
	OTPTTL             time.Duration `env:"OTP_TTL" envDefault:"5m"`
	TOTPIssuer         string        `env:"TOTP_ISSUER" envDefault:"mfagate"`
	TOTPSkew           uint          `env:"TOTP_SKEW" envDefault:"1"`
	CodePurgeInterval  time.Duration `env:"OTP_PURGE_INTERVAL" envDefault:"10m"`

	LoginMaxAttempts  int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginWindow       time.Duration `env:"LOGIN_WINDOW" envDefault:"15m"`
	VerifyMaxAttempts int           `env:"VERIFY_MAX_ATTEMPTS" envDefault:"5"`
	VerifyWindow      time.Duration `env:"VERIFY_WINDOW" envDefault:"15m"`
}

// DefaultConfig returns a Config with every default applied and no keys.
func DefaultConfig() Config {
	return Config{
		JWTIssuer:         "mfagate",
		JWTLeeway:         5 * time.Second,
		PendingTokenTTL:   10 * time.Minute,
		FullTokenTTL:      24 * time.Hour,
		BcryptCost:        12,
		OTPTTL:            5 * time.Minute,
		TOTPIssuer:        "mfagate",
		TOTPSkew:          1,
		CodePurgeInterval: 10 * time.Minute,
		LoginMaxAttempts:  5,
		LoginWindow:       15 * time.Minute,
		VerifyMaxAttempts: 5,
		VerifyWindow:      15 * time.Minute,
	}
}
