package handler

import (
	"context"
	"time"

	"webtraffic/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// HealthCheck reports storage reachability and a CPU sample. client is
// nil when the service runs on the in-memory store.
func HealthCheck(c *gin.Context, client *mongo.Client) {
	status := "ok"
	storage := "memory"

	if client != nil {
		storage = "mongo"
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			status = "degraded"
			storage = "unreachable"
		}
	}

	utils.Success(c, gin.H{
		"status":    status,
		"storage":   storage,
		"cpu_usage": utils.GetCPUUsage(),
	})
}
