package config

import (
	"strings"
	"time"
)

// PaytrConfig holds the endpoints and transport settings for the PayTR
// card-storage and payment API. Merchant credentials are per company and
// live in the virtual POS table, not here.
type PaytrConfig struct {
	BaseURL         string
	CardListPath    string
	CardDeletePath  string
	PaymentPath     string
	LinkCreatePath  string
	MerchantOkURL   string
	MerchantFailURL string
	CallbackURL     string
	Timeout         time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	RateLimit       float64
	RateBurst       int
}

// CollectConfig holds the defaults used when charging a stored card.
type CollectConfig struct {
	DefaultCompanyID string
	Currency         string
	PaymentType      string
	InstallmentCount string
	Non3D            string
	DefaultUserIP    string
	UserAddress      string
	UserPhone        string
	LockTTL          time.Duration
	LockWait         time.Duration
	SubmitTimeout    time.Duration
	CacheTTL         time.Duration
	Cron             string
	Location         string
	RetryCooldown    time.Duration
	BatchSize        int
	Workers          int
}

func LoadPaytrConfig() PaytrConfig {
	return PaytrConfig{
		BaseURL:         strings.TrimRight(Config("PAYTR_BASE_URL", "https://www.paytr.com"), "/"),
		CardListPath:    Config("PAYTR_CARD_LIST_PATH", "/odeme/capi/list"),
		CardDeletePath:  Config("PAYTR_CARD_DELETE_PATH", "/odeme/capi/delete"),
		PaymentPath:     Config("PAYTR_PAYMENT_PATH", "/odeme"),
		LinkCreatePath:  Config("PAYTR_LINK_CREATE_PATH", "/odeme/api/link/create"),
		MerchantOkURL:   Config("PAYTR_MERCHANT_OK_URL", ""),
		MerchantFailURL: Config("PAYTR_MERCHANT_FAIL_URL", ""),
		CallbackURL:     Config("PAYTR_CALLBACK_URL", ""),
		Timeout:         ConfigDuration("PAYTR_TIMEOUT", 8*time.Second),
		MaxRetries:      ConfigInt("PAYTR_MAX_RETRIES", 2),
		RetryBackoff:    ConfigDuration("PAYTR_RETRY_BACKOFF", 500*time.Millisecond),
		RateLimit:       ConfigFloat("PAYTR_RATE_LIMIT", 10),
		RateBurst:       ConfigInt("PAYTR_RATE_BURST", 5),
	}
}

func LoadCollectConfig() CollectConfig {
	return CollectConfig{
		DefaultCompanyID: Config("DEFAULT_COMPANY_ID", "VERI"),
		Currency:         Config("PAYTR_CURRENCY", "TL"),
		PaymentType:      Config("PAYTR_PAYMENT_TYPE", "card"),
		InstallmentCount: Config("PAYTR_INSTALLMENT_COUNT", "0"),
		Non3D:            Config("PAYTR_NON_3D", "1"),
		DefaultUserIP:    Config("PAYTR_DEFAULT_USER_IP", "127.0.0.1"),
		UserAddress:      Config("PAYTR_USER_ADDRESS", "Adres bilgisi yok"),
		UserPhone:        Config("PAYTR_USER_PHONE", "05555555555"),
		LockTTL:          ConfigDuration("COLLECT_LOCK_TTL", 2*time.Minute),
		LockWait:         ConfigDuration("COLLECT_LOCK_WAIT", 5*time.Second),
		SubmitTimeout:    ConfigDuration("COLLECT_SUBMIT_TIMEOUT", 30*time.Second),
		CacheTTL:         ConfigDuration("MERCHANT_CONFIG_CACHE_TTL", 5*time.Minute),
		Cron:             Config("COLLECT_CRON", "*/15 * * * *"),
		Location:         Config("COLLECT_TIMEZONE", "Europe/Istanbul"),
		RetryCooldown:    ConfigDuration("COLLECT_RETRY_COOLDOWN", 24*time.Hour),
		BatchSize:        ConfigInt("COLLECT_BATCH_SIZE", 100),
		Workers:          ConfigInt("COLLECT_WORKERS", 4),
	}
}
