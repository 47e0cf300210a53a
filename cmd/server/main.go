package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"orders-service/internal/config"
	"orders-service/internal/controller"
	"orders-service/internal/metrics"
	"orders-service/internal/middleware"
	"orders-service/internal/rabbit"
	"orders-service/internal/repository"
	"orders-service/internal/search"
	"orders-service/internal/service"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Primary store (PostgreSQL)
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if err := repository.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("init schema: %v", err)
	}
	repo := repository.NewPostgresOrderRepository(pool)

	// Search index (MongoDB)
	mctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(mctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	index := search.NewMongoOrderIndex(client.Database(cfg.MongoDBName), cfg.IndexTimeout)

	// Event publisher (RabbitMQ)
	conn, err := amqp091.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("rabbit connect: %v", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbit channel: %v", err)
	}
	publisher, err := rabbit.NewPublisher(ch, cfg.PublishTimeout)
	if err != nil {
		log.Fatalf("rabbit exchange: %v", err)
	}

	// Services and handlers
	orderService := service.NewOrderService(repo, publisher, index)
	queryService := service.NewOrderQueryService(index)
	ctrl := controller.NewOrderController(orderService, queryService)

	// Router
	m := metrics.NewServerMetrics()
	r := gin.Default()
	r.Use(middleware.Metrics(m))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.POST("/orders", ctrl.Create)
	r.GET("/orders", ctrl.FindAll)
	r.GET("/orders/:id", ctrl.FindOne)
	r.PATCH("/orders/:id", ctrl.Update)
	r.DELETE("/orders/:id", ctrl.Remove)

	r.GET("/orders/searchId/:id", ctrl.SearchByID)
	r.GET("/orders/searchStatus/:status", ctrl.SearchByStatus)
	r.GET("/orders/searchDateRange/:start/:end", ctrl.SearchByDateRange)
	r.GET("/orders/searchByItems", ctrl.SearchByItems)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Printf("orders service listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = srv.Shutdown(shutdownCtx)

	// let in-flight propagation finish before the process exits
	orderService.Wait()
}
