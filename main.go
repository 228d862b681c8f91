package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/LdDl/sheetcut-go/api"
)

const (
	// DefaultPort is the default server port
	DefaultPort = "8080"

	// ServerReadTimeout is the HTTP server read timeout
	ServerReadTimeout = 30 * time.Second

	// ServerWriteTimeout is the HTTP server write timeout
	ServerWriteTimeout = 120 * time.Second

	// ServerIdleTimeout is the HTTP server idle timeout
	ServerIdleTimeout = 60 * time.Second

	// GracefulShutdownTimeout is the timeout for graceful shutdown
	GracefulShutdownTimeout = 10 * time.Second
)

func main() {
	// Optional .env next to the binary
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	config := &api.Config{
		Port:            getEnv("PORT", DefaultPort),
		MaxUploadSize:   getEnvInt64("MAX_UPLOAD_SIZE", api.DefaultMaxUploadSize),
		MattingEndpoint: getEnv("MATTING_ENDPOINT", ""),
		Workers:         getEnvInt("WORKERS", 0),
	}

	r := gin.Default()
	api.SetupRoutes(r, config)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "sheetcut",
		})
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", config.Port),
		Handler:      r,
		ReadTimeout:  ServerReadTimeout,
		WriteTimeout: ServerWriteTimeout,
		IdleTimeout:  ServerIdleTimeout,
	}

	go func() {
		log.Printf("Server starting on %s", srv.Addr)
		if config.MattingEndpoint != "" {
			log.Printf("Matting backend: %s", config.MattingEndpoint)
		} else {
			log.Println("Matting backend: built-in chroma key")
		}
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
