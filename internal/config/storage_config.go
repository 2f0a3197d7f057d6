package config

const (
	userStoreVar    = "USER_STORE"
	databaseURLVar  = "DATABASE_URL"
	refreshStoreVar = "REFRESH_STORE"
	redisURLVar     = "REDIS_URL"
	redisPrefixVar  = "REDIS_PREFIX"
)

const (
	UserStoreMemory   = "memory"
	UserStorePostgres = "postgres"

	// RefreshStoreUser keeps the refresh digest on the user record.
	RefreshStoreUser  = "user"
	RefreshStoreRedis = "redis"
)

type StorageConfig interface {
	GetUserStore() string
	GetDatabaseURL() string
	GetRefreshStore() string
	GetRedisURL() string
	GetRedisPrefix() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetUserStore() string {
	return GetEnv(userStoreVar, UserStoreMemory)
}

func (Storage) GetDatabaseURL() string {
	return GetEnv(databaseURLVar, "")
}

func (Storage) GetRefreshStore() string {
	return GetEnv(refreshStoreVar, RefreshStoreUser)
}

func (Storage) GetRedisURL() string {
	return GetEnv(redisURLVar, "")
}

func (Storage) GetRedisPrefix() string {
	return GetEnv(redisPrefixVar, "tokenauth")
}
