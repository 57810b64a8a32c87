package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Configuration chứa thông tin tĩnh cần thiết để chạy ứng dụng
type Configuration struct {
	Address               string `env:"ADDRESS" envDefault:"8080"`                 // Cổng server
	MongoDB_ConnectionURI string `env:"MONGODB_CONNECTION_URI,required"`           // URL kết nối cơ sở dữ liệu
	MongoDB_DBName_Data   string `env:"MONGODB_DBNAME_DATA,required"`              // Tên cơ sở dữ liệu nghiệp vụ
	CORS_Origins          string `env:"CORS_ORIGINS" envDefault:"*"`               // Các origins được phép (phân cách bởi dấu phẩy)
	CORS_AllowCredentials bool   `env:"CORS_ALLOW_CREDENTIALS" envDefault:"false"` // Cho phép gửi credentials
	RateLimit_Max         int    `env:"RATE_LIMIT_MAX" envDefault:"100"`           // Số request tối đa trong window (0 = tắt)
	RateLimit_Window      int    `env:"RATE_LIMIT_WINDOW" envDefault:"60"`         // Thời gian window (giây)
	RateLimit_Enabled     bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`      // Bật/tắt rate limiting

	// Analytics
	StoreDefaultTimezone  string `env:"STORE_DEFAULT_TIMEZONE" envDefault:"Europe/Istanbul"` // IANA timezone khi store chưa cấu hình
	DashboardCacheTTL     int    `env:"DASHBOARD_CACHE_TTL" envDefault:"300"`                // TTL cache dashboard (giây)
	DashboardDedupTTL     int    `env:"DASHBOARD_DEDUP_TTL" envDefault:"5"`                  // TTL chống request trùng (giây)
	DashboardQueryTimeout int    `env:"DASHBOARD_QUERY_TIMEOUT" envDefault:"20"`             // Timeout tổng cho một lần tính dashboard (giây)
}

// CacheTTL trả về TTL cache dashboard dạng time.Duration.
func (c *Configuration) CacheTTL() time.Duration {
	return time.Duration(c.DashboardCacheTTL) * time.Second
}

// DedupTTL trả về TTL tầng chống request trùng.
func (c *Configuration) DedupTTL() time.Duration {
	return time.Duration(c.DashboardDedupTTL) * time.Second
}

// QueryTimeout trả về timeout tổng cho một lần tính dashboard.
func (c *Configuration) QueryTimeout() time.Duration {
	return time.Duration(c.DashboardQueryTimeout) * time.Second
}

// getEnvPath trả về đường dẫn đến file env dựa trên GO_ENV (mặc định development)
func getEnvPath() string {
	goEnv := os.Getenv("GO_ENV")
	if goEnv == "" {
		goEnv = "development"
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Tìm thư mục config/env, đi ngược lên thư mục cha
	for {
		envDir := filepath.Join(currentDir, "config", "env")
		if _, err := os.Stat(envDir); err == nil {
			return filepath.Join(envDir, fmt.Sprintf("%s.env", goEnv))
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return ""
		}
		currentDir = parentDir
	}
}

// NewConfig đọc cấu hình: load file env (nếu có) rồi parse environment variables.
// Không có file env không phải lỗi; thiếu biến required thì trả về lỗi.
func NewConfig() (*Configuration, error) {
	if envPath := getEnvPath(); envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("không thể load file env tại %s: %w", envPath, err)
		}
	}

	cfg := Configuration{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("lỗi khi parse config: %w", err)
	}
	if cfg.DashboardCacheTTL < 0 || cfg.DashboardDedupTTL < 0 {
		return nil, fmt.Errorf("TTL cache không được âm")
	}
	if cfg.DashboardQueryTimeout <= 0 {
		cfg.DashboardQueryTimeout = 20
	}
	return &cfg, nil
}
