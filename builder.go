package shopadmin

import (
	"errors"

	"github.com/miaodi2002/shopadmin/password"
	"github.com/miaodi2002/shopadmin/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Builder assembles an [Engine]. Chain the With* methods and finish with
// Build; a builder is single-use.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	adminProvider   AdminProvider
	accountStore    AccountStore
	credentialStore CredentialStore
	auditStore      AuditStore
	auditSink       AuditSink
	throttle        LoginThrottle
	logger          *zap.Logger

	built bool
}

func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

func (b *Builder) WithAdminProvider(p AdminProvider) *Builder {
	b.adminProvider = p
	return b
}

func (b *Builder) WithAccountStore(s AccountStore) *Builder {
	b.accountStore = s
	return b
}

func (b *Builder) WithCredentialStore(s CredentialStore) *Builder {
	b.credentialStore = s
	return b
}

// WithAuditStore sets the durable event log. Unless a sink is also set, the
// dispatcher writes to this store through a [StoreSink].
func (b *Builder) WithAuditStore(s AuditStore) *Builder {
	b.auditStore = s
	return b
}

// WithAuditSink overrides the dispatcher sink. Takes precedence over the
// store-backed default.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithLoginThrottle(t LoginThrottle) *Builder {
	b.throttle = t
	return b
}

func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if cfg.Now == nil {
		cfg.Now = defaultConfig().Now
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.adminProvider == nil {
		return nil, errors.New("admin provider required")
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	sink := b.auditSink
	if sink == nil && b.auditStore != nil {
		sink = NewStoreSink(b.auditStore, logger)
	}

	throttle := b.throttle
	if throttle == nil {
		throttle = NoOpThrottle{}
	}

	ph, err := password.NewArgon2(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		config:          cfg,
		sessionStore:    session.NewStore(b.redis, cfg.Session.RedisPrefix),
		adminProvider:   b.adminProvider,
		accountStore:    b.accountStore,
		credentialStore: b.credentialStore,
		auditStore:      b.auditStore,
		audit:           newAuditDispatcher(cfg.Audit, sink),
		metrics:         NewMetrics(cfg.Metrics),
		passwordHash:    ph,
		throttle:        throttle,
		logger:          logger,
	}

	b.built = true

	return engine, nil
}
