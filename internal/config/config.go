package config

import (
	"github.com/caarlos0/env/v11"

	"log"
)

type Config struct {
	Redis   Redis
	Gateway Gateway
	Webhook Webhook
}

type Redis struct {
	Addr     string `env:"Redis_Address" envDefault:"localhost:6379"`
	Password string `env:"Redis_Password"`
	DB       int    `env:"Redis_DB"`
}

type Gateway struct {
	URL     string `env:"Gateway_URL"`
	Token   string `env:"Gateway_Token"`
	BaseURL string `env:"Public_API_BaseURL" envDefault:"http://localhost:8080"`
}

type Webhook struct {
	QueueName       string `env:"Webhook_QueueName" envDefault:"webhook:deliveries"`
	ScheduleID      string `env:"Webhook_ScheduleID" envDefault:"webhook-dispatch"`
	IntervalSeconds int    `env:"Webhook_FlushIntervalSeconds" envDefault:"900"`
}

func Load() *Config {
	var c Config
	if err := env.Parse(&c); err != nil {
		log.Fatal(err)
	}

	return &c
}
