package service

import "time"

const (
	// Сколько истекших розыгрышей закрывается параллельно
	MaxConcurrentSweeps = 4

	// Пауза между проверками дедлайнов открытых розыгрышей
	DefaultSweepInterval = time.Minute

	cacheRaffleKeyPrefix = "cache:raffle:"
	cacheListKeyPrefix   = "cache:raffles:"
)
