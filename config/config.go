package config

import (
	"time"

	"github.com/spf13/viper"
	"sync"
)

var once sync.Once

func InitConfig() {
	once.Do(func() {
		viper.AutomaticEnv()

		viper.BindEnv("listen_addr", "LISTEN_ADDR")
		viper.BindEnv("db_path", "DB_PATH")
		viper.BindEnv("provider", "PROVIDER")
		viper.BindEnv("coingecko_base_url", "COINGECKO_BASE_URL")
		viper.BindEnv("coinpaprika_api_key", "COINPAPRIKA_API_KEY")
		viper.BindEnv("poll_interval", "POLL_INTERVAL")
		viper.BindEnv("search_debounce", "SEARCH_DEBOUNCE")
		viper.BindEnv("page_size", "PAGE_SIZE")
		viper.BindEnv("debug", "DEBUG")

		viper.SetDefault("listen_addr", ":8080")
		viper.SetDefault("db_path", "./cryptodash.db")
		viper.SetDefault("provider", "coingecko")
		viper.SetDefault("coingecko_base_url", "https://api.coingecko.com/api/v3")
		viper.SetDefault("poll_interval", 30*time.Second)
		viper.SetDefault("search_debounce", 300*time.Millisecond)
		viper.SetDefault("page_size", 20)
		viper.SetDefault("debug", false)
	})
}

func GetString(key string) string {
	InitConfig()
	return viper.GetString(key)
}

func GetInt(key string) int {
	InitConfig()
	return viper.GetInt(key)
}

func GetBool(key string) bool {
	InitConfig()
	return viper.GetBool(key)
}

func GetDuration(key string) time.Duration {
	InitConfig()
	return viper.GetDuration(key)
}
