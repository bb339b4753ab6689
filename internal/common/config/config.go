package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Redis struct {
		Host     string `env:"REDIS_HOST" envDefault:"localhost"`
		Port     int    `env:"REDIS_PORT" envDefault:"6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Telegram struct {
		BotToken string  `env:"BOT_TOKEN,required"`
		AdminIDs []int64 `env:"ADMIN_IDS" envSeparator:","`
	}

	// Фиксированные награды реферальной программы
	Rewards struct {
		InviterBonus int64 `env:"INVITER_REWARD" envDefault:"10"`
		InviteeBonus int64 `env:"INVITEE_REWARD" envDefault:"5"`
	}

	Raffle struct {
		// Интервал фонового закрытия просроченных розыгрышей
		SweepInterval time.Duration `env:"RAFFLE_SWEEP_INTERVAL" envDefault:"1m"`
	}

	Cache struct {
		RaffleTTL time.Duration `env:"CACHE_RAFFLE_TTL" envDefault:"30s"`
		TaskTTL   time.Duration `env:"CACHE_TASK_TTL" envDefault:"1m"`
	}
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		// Игнорируем ошибку, если .env файл не найден
		// В production окружении переменные могут быть установлены напрямую
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}

// IsAdmin сообщает, входит ли пользователь в список администраторов
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Telegram.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
