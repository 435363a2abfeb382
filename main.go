package main

import (
	"context"
	"log"

	"elsahm-admin/config"
	"elsahm-admin/controllers"
	db "elsahm-admin/database"
	"elsahm-admin/gcs"
	"elsahm-admin/imagehost"
	"elsahm-admin/jobs"
	"elsahm-admin/push"
	"elsahm-admin/relational"
	"elsahm-admin/repository"
	"elsahm-admin/routes"
	"elsahm-admin/services"
	"elsahm-admin/threadsync"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	// โหลด config จาก .env และ environment
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	ctx := context.Background()

	// เริ่มต้นการเชื่อมต่อ MongoDB
	mongo, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongo.Disconnect() // ยกเลิกการเชื่อมต่อเมื่อโปรแกรมจบ

	if err := mongo.EnsureIndexes(ctx); err != nil {
		log.Println("Warning: failed to ensure indexes:", err)
	}

	complaintRepo := repository.NewComplaintRepository(mongo, cfg.StoreTimeout)
	userRepo := repository.NewUserRepository(mongo, cfg.StoreTimeout)
	notificationRepo := repository.NewNotificationRepository(mongo, cfg.StoreTimeout)

	// PostgreSQL ไม่บังคับ
	var (
		paymentMethods *relational.PaymentMethodRepository
		dispatchLog    *relational.DispatchLogRepository
		logger         services.DispatchLogger
	)
	if cfg.PostgresDSN != "" {
		pg, err := relational.Open(cfg.PostgresDSN)
		if err != nil {
			log.Fatal("Failed to open relational backend:", err)
		}
		defer relational.Close(pg)

		paymentMethods = relational.NewPaymentMethodRepository(pg)
		dispatchLog = relational.NewDispatchLogRepository(pg)
		logger = dispatchLog
	} else {
		log.Println("Warning: POSTGRES_DSN not set, payment methods and dispatch log disabled")
	}

	// Redis ไม่บังคับ
	var mirror services.StatsMirror
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Println("Warning: redis unreachable, stats mirror disabled:", err)
		} else {
			mirror = services.NewRedisStatsStore(rdb)
			log.Println("Connected to Redis")
		}
	}

	// image hosts: GCS ก่อน แล้วค่อย ImgBB
	host := &imagehost.Fallback{}
	if cfg.GCSBucket != "" {
		storageClient, err := gcs.NewClient(ctx, cfg.GCSCredentialsFile)
		if err != nil {
			log.Fatal(err)
		}
		defer storageClient.Close()

		if err := gcs.CheckBucket(ctx, storageClient, cfg.GCSBucket); err != nil {
			log.Println("Warning:", err)
		}
		host.Primary = &imagehost.GCSHost{Client: storageClient, Bucket: cfg.GCSBucket, Folder: "complaints"}
	}
	if cfg.ImgBBAPIKey != "" {
		host.Secondary = imagehost.NewHTTPHost(cfg.ImgBBAPIKey, cfg.ImgBBUploadURL, cfg.HTTPTimeout)
	}

	var sender services.PushSender
	if cfg.PushEnabled() {
		sender = push.NewClient(cfg.OneSignalAppID, cfg.OneSignalAPIKey, cfg.OneSignalAPIURL, cfg.HTTPTimeout)
	}

	dispatcher := services.NewDispatcher(notificationRepo, sender, logger)

	hub := threadsync.NewHub()
	composer := services.NewResponseComposer(complaintRepo, host, cfg.MaxImageBytes).WithSink(hub)

	stats := services.NewStatsService(services.NewStatsCache(cfg.StatsTTL), complaintRepo, userRepo, mirror)
	balance := services.NewBalanceService(userRepo, dispatcher, stats, cfg.WalletCurrency)

	auth := services.NewAuthService(cfg.AdminPasswordHash, cfg.JWTSecret, services.Operator{
		ID:   cfg.OperatorID,
		Name: cfg.OperatorName,
	})

	// change stream ต้องใช้ replica set ถ้าไม่ได้ก็ poll แทน
	live := &threadsync.FallbackSource{
		Primary:   &threadsync.StreamSource{Collection: complaintRepo.Collection(), Fetcher: complaintRepo},
		Secondary: &threadsync.PollingSource{Fetcher: complaintRepo, Interval: cfg.PollInterval},
	}

	scheduler := jobs.NewScheduler(cfg.StoreTimeout * 4)
	err = scheduler.Add("dashboard-stats", cfg.StatsRefreshSpec, func(ctx context.Context) error {
		_, err := stats.ForceRefresh(ctx)
		return err
	})
	if err != nil {
		log.Fatal("Failed to schedule stats refresh:", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	handler := controllers.NewHandler(controllers.Options{
		Auth:           auth,
		Complaints:     complaintRepo,
		Composer:       composer,
		Dispatcher:     dispatcher,
		Balance:        balance,
		Stats:          stats,
		PaymentMethods: paymentMethods,
		DispatchLog:    dispatchLog,
		LiveSource:     live,
		Hub:            hub,
		AlertDuration:  cfg.AlertDuration,
		Origins:        cfg.CORSOrigins,
		MaxImageBytes:  cfg.MaxImageBytes,
		Currency:       cfg.WalletCurrency,
		SecureCookie:   cfg.CookieSecure,
	})

	// ตั้งค่า Gin router
	r := gin.Default()

	// เรียก routes
	routes.SetupRoutes(r, handler, auth, cfg.CORSOrigins)

	// เริ่มเซิร์ฟเวอร์
	log.Printf("Starting server on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
