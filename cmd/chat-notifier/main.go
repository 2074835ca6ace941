package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wink-server/internal/config"
	"wink-server/internal/firebaseapp"
	"wink-server/internal/handler"
	"wink-server/internal/messaging"
	"wink-server/internal/middleware"
	"wink-server/internal/repository"
	"wink-server/internal/service"
	"wink-server/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

func main() {
	// --- Загрузка конфигурации ---
	if err := godotenv.Load(); err != nil {
		log.Printf(".env not loaded: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// --- Логгер ---
	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Encoding,
	})
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	zapLogger.Info("Логгер инициализирован", zap.String("logLevel", cfg.Log.Level))

	// --- Firebase ---
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	clients, err := firebaseapp.Initialize(initCtx, cfg.Firebase, zapLogger)
	initCancel()
	if err != nil {
		zapLogger.Fatal("Не удалось инициализировать Firebase", zap.Error(err))
	}
	defer func() {
		if err := clients.Close(); err != nil {
			zapLogger.Error("Ошибка закрытия Firestore клиента", zap.Error(err))
		}
	}()

	var pushGateway service.PushGateway
	if cfg.Firebase.StubMessaging {
		zapLogger.Warn("FCM_STUB включен, уведомления только логируются")
		pushGateway = service.NewStubFCMSender(zapLogger)
	} else {
		pushGateway = service.NewFCMSender(clients.Messaging, cfg.Firebase.DryRun, zapLogger)
	}

	users := repository.NewFirestoreUserRepository(clients.Firestore, zapLogger)

	// --- Redis (опционально) ---
	var marker service.DeliveryMarker
	if cfg.Dedup.Enabled {
		redisClient, err := connectRedis(cfg.Redis, zapLogger)
		if err != nil {
			zapLogger.Fatal("Не удалось подключиться к Redis", zap.Error(err))
		}
		defer redisClient.Close()
		marker = repository.NewRedisDeliveryMarker(redisClient, cfg.Dedup.TTL, zapLogger)
	}

	metrics := service.NewMetrics(prometheus.DefaultRegisterer)
	dispatcher := service.NewDispatcher(users, pushGateway, marker, metrics, zapLogger)

	// --- HTTP ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.HTTP.Env == "development" {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.ZapLoggingMiddlewareForGin(zapLogger))
	router.Use(gin.Recovery())

	eventHandler := handler.NewChatEventHandler(dispatcher, cfg.DispatchTimeout, zapLogger)
	eventHandler.RegisterRoutes(router, middleware.InterServiceAuthMiddleware(cfg.InterServiceSecret, zapLogger))

	// Prometheus middleware подключается после регистрации роутов, он же отдаёт /metrics
	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.DispatchTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		zapLogger.Info("Запуск HTTP сервера", zap.String("port", cfg.HTTP.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Ошибка HTTP сервера", zap.Error(err))
		}
	}()

	// --- RabbitMQ (опционально) ---
	var consumer *messaging.Consumer
	consumerErrChan := make(chan error, 1)
	if cfg.RabbitMQ.URI != "" {
		rabbitConn, err := connectRabbitMQ(cfg.RabbitMQ.URI, zapLogger)
		if err != nil {
			zapLogger.Fatal("Не удалось подключиться к RabbitMQ", zap.Error(err))
		}
		defer rabbitConn.Close()

		processor := messaging.NewProcessor(zapLogger, dispatcher, cfg.DispatchTimeout)
		consumer, err = messaging.NewConsumer(rabbitConn, zapLogger, cfg.RabbitMQ.QueueName, cfg.RabbitMQ.WorkerConcurrency, processor)
		if err != nil {
			zapLogger.Fatal("Не удалось создать консьюмера RabbitMQ", zap.Error(err))
		}
		go func() {
			consumerErrChan <- consumer.Start()
		}()
	} else {
		zapLogger.Info("RABBITMQ_URI не задан, события принимаются только по HTTP")
	}

	// --- Ожидание сигнала завершения ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		zapLogger.Info("Получен сигнал завершения, начинаем остановку...")
	case err := <-consumerErrChan:
		zapLogger.Error("Консьюмер RabbitMQ завершился, инициируем остановку", zap.Error(err))
		consumer = nil
	}

	// --- Graceful shutdown ---
	if consumer != nil {
		consumer.Stop()
		if err := <-consumerErrChan; err != nil {
			zapLogger.Error("Консьюмер RabbitMQ остановлен с ошибкой", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.DispatchTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("HTTP сервер остановлен принудительно", zap.Error(err))
	}

	zapLogger.Info("Сервис уведомлений чата остановлен")
}

func connectRedis(cfg config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	logger.Info("Подключение к Redis установлено", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	return client, nil
}

// connectRabbitMQ пытается подключиться к RabbitMQ с несколькими попытками
func connectRabbitMQ(uri string, logger *zap.Logger) (*amqp.Connection, error) {
	var (
		connection *amqp.Connection
		err        error
	)
	maxRetries := 50
	retryDelay := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		connection, err = amqp.Dial(uri)
		if err == nil {
			logger.Info("Подключение к RabbitMQ успешно установлено")
			go func() {
				notifyClose := connection.NotifyClose(make(chan *amqp.Error, 1))
				if closeErr := <-notifyClose; closeErr != nil {
					logger.Error("Соединение с RabbitMQ разорвано", zap.Error(closeErr))
				}
			}()
			return connection, nil
		}
		logger.Warn("Не удалось подключиться к RabbitMQ, попытка переподключения...",
			zap.Error(err),
			zap.Int("retry", i+1),
			zap.Duration("delay", retryDelay),
		)
		time.Sleep(retryDelay)
	}
	return nil, fmt.Errorf("не удалось подключиться к RabbitMQ после %d попыток: %w", maxRetries, err)
}
