package main

import (
	"log"
	"net/http"

	"cart-service/backend"
	"cart-service/cart"
	"cart-service/checkout"
	"cart-service/config"
	"cart-service/consumers"
	"cart-service/controllers"
	"cart-service/database"
	"cart-service/middlewares"
	"cart-service/models"
	"cart-service/rabbitmq"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := database.InitDB(); err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer database.CloseDB()

	cfg := config.LoadConfig()

	rmq, err := rabbitmq.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatalf("RabbitMQ initialization failed: %v", err)
	}
	defer rmq.Close()

	if err := rmq.SetupQueues(); err != nil {
		log.Fatalf("Failed to setup RabbitMQ queues: %v", err)
	}

	go consumers.StartCheckoutConsumer(rmq.Channel, cfg)

	store := cart.NewStore()
	store.Subscribe(func(userID int, state models.CartState) {
		log.Printf("Cart updated: user=%d items=%d total=%d", userID, len(state.Items), state.Total)
	})

	client := backend.NewClient(cfg.BackendBaseURL)
	controllers.Setup(cfg, store, checkout.NewAssembler(cfg), client, client)
	controllers.SetRabbitMQ(rmq)

	r := gin.Default()

	r.Use(middlewares.PrometheusMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := r.Group("/api")
	authGroup.Use(middlewares.AuthMiddleware())
	{
		authGroup.GET("/cart", controllers.GetCart)
		authGroup.POST("/cart/items", controllers.AddItem)
		authGroup.DELETE("/cart/items/:id", controllers.RemoveItem)
		authGroup.PUT("/cart/items/:id", controllers.UpdateQuantity)
		authGroup.POST("/checkout", controllers.Checkout)
	}

	r.POST("/dead-letter", controllers.HandleDeadLetter)

	port := ":8080"
	log.Printf("Cart service starting on port %s", port)
	if err := r.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
