package main

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/meridianbank/banking/shared/config"
	"github.com/meridianbank/banking/shared/middleware"
)

var (
	accountServiceURL     string
	transactionServiceURL string
)

func main() {
	config.Load()
	accountServiceURL = strings.TrimSuffix(config.GetEnv("ACCOUNT_SERVICE_URL", "http://localhost:8083"), "/")
	transactionServiceURL = strings.TrimSuffix(config.GetEnv("TRANSACTION_SERVICE_URL", "http://localhost:8084"), "/")

	router := gin.Default()
	router.Use(middleware.LoggingMiddleware())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "service": "api-gateway"})
	})

	// Account routes
	accounts := router.Group("/v1/accounts", middleware.AuthMiddleware())
	{
		accounts.POST("", proxyTo(accountServiceURL))
		accounts.GET("", proxyTo(accountServiceURL))
		accounts.GET("/:accountId", proxyTo(accountServiceURL))
		accounts.GET("/number/:accountNumber", proxyTo(accountServiceURL))
		accounts.GET("/:accountId/balance", proxyTo(accountServiceURL))
		accounts.POST("/:accountId/credit", proxyTo(accountServiceURL))
		accounts.POST("/:accountId/debit", proxyTo(accountServiceURL))
		accounts.POST("/:accountId/block", proxyTo(accountServiceURL))
		accounts.POST("/:accountId/release", proxyTo(accountServiceURL))
		accounts.POST("/:accountId/suspend", proxyTo(accountServiceURL))
		accounts.POST("/:accountId/close", proxyTo(accountServiceURL))
	}

	// Transaction routes
	transactions := router.Group("/v1/transactions", middleware.AuthMiddleware())
	{
		transactions.POST("", proxyTo(transactionServiceURL))
		transactions.GET("/:transactionId", proxyTo(transactionServiceURL))
		transactions.GET("/reference/:reference", proxyTo(transactionServiceURL))
		transactions.GET("/account/:accountId", proxyTo(transactionServiceURL))
		transactions.GET("/owner/:ownerId", proxyTo(transactionServiceURL))
		transactions.GET("/status/:status", proxyTo(transactionServiceURL))
		transactions.GET("/pending/stale", proxyTo(transactionServiceURL))
		transactions.POST("/:transactionId/process", proxyTo(transactionServiceURL))
		transactions.POST("/:transactionId/complete", proxyTo(transactionServiceURL))
		transactions.POST("/:transactionId/fail", proxyTo(transactionServiceURL))
		transactions.POST("/:transactionId/cancel", proxyTo(transactionServiceURL))
		transactions.POST("/:transactionId/reverse", proxyTo(transactionServiceURL))
	}

	port := config.GetEnv("PORT", "8080")
	log.Printf("API Gateway starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func proxyTo(serviceURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Build target URL
		targetURL := serviceURL + c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			targetURL += "?" + c.Request.URL.RawQuery
		}

		// Read request body
		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		// Create new request
		req, err := http.NewRequest(c.Request.Method, targetURL, bytes.NewBuffer(bodyBytes))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create request"})
			return
		}

		// Copy headers
		for key, values := range c.Request.Header {
			for _, value := range values {
				req.Header.Add(key, value)
			}
		}

		// Forward owner context from JWT middleware
		if ownerID, exists := c.Get("ownerId"); exists {
			req.Header.Set("X-Owner-ID", ownerID.(string))
		}
		if email, exists := c.Get("email"); exists {
			req.Header.Set("X-Owner-Email", email.(string))
		}

		// Make request
		client := &http.Client{}
		resp, err := client.Do(req)
		if err != nil {
			log.Printf("Error proxying request: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"message": "Service unavailable"})
			return
		}
		defer resp.Body.Close()

		// Read response
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to read response"})
			return
		}

		// Copy response headers
		for key, values := range resp.Header {
			for _, value := range values {
				c.Header(key, value)
			}
		}

		// Forward response
		c.Data(resp.StatusCode, resp.Header.Get("Content-Type"), respBody)
	}
}
