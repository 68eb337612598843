package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"canteen/internal/config"
	"canteen/internal/domain/model"
	"canteen/internal/handler"
	"canteen/internal/infra/db"
	"canteen/internal/infra/messaging"
	"canteen/internal/infra/qrcode"
	infraRepo "canteen/internal/infra/repository"
	"canteen/internal/logger"
	"canteen/internal/scheduler"
	"canteen/internal/server"
	"canteen/internal/usecase"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type closablePublisher interface {
	usecase.EventPublisher
	Close() error
}

func main() {
	// .envは任意（本番は環境変数で渡す）
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("failed to load .env")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid config")
	}
	log := logger.New(cfg)

	//DB接続
	gormDB, err := db.Connect(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect database")
	}
	if err := db.Migrate(gormDB); err != nil {
		log.WithError(err).Fatal("failed to migrate")
	}
	log.Info("migration is successful")

	//Repository（GORM実装）生成
	txm := infraRepo.NewTxManagerGorm(gormDB)
	seqRepo := infraRepo.NewSequenceGormRepository(gormDB)
	canteenRepo := infraRepo.NewCanteenGormRepository(gormDB)
	studentRepo := infraRepo.NewStudentGormRepository(gormDB)
	adminRepo := infraRepo.NewAdminGormRepository(gormDB)
	menuRepo := infraRepo.NewMenuItemGormRepository(gormDB)
	notificationRepo := infraRepo.NewNotificationGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	reportRepo := infraRepo.NewReportGormRepository(gormDB)

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}
	publisher := newPublisher(cfg, log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.WithError(err).Warn("failed to close publisher")
		}
	}()

	hasher := usecase.NewBcryptPasswordHasher(12)
	issuer := usecase.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)

	//Usecase生成
	allocator := usecase.NewSequenceAllocator(seqRepo)
	authUC := usecase.NewAuthUsecase(studentRepo, canteenRepo, adminRepo, hasher, issuer, clock)
	orderUC := usecase.NewOrderUsecase(txm, canteenRepo, allocator, qrcode.NewPNGRenderer(), publisher, idGen, clock, log,
		usecase.OrderOptions{
			InitialStatus: model.OrderStatus(cfg.OrderInitialStatus),
			Location:      cfg.Location,
		})
	verifyUC := usecase.NewVerifyUsecase(txm, canteenRepo, publisher, idGen, clock, log, cfg.Location)
	canteenUC := usecase.NewCanteenUsecase(canteenRepo)
	menuUC := usecase.NewMenuUsecase(menuRepo)
	notificationUC := usecase.NewNotificationUsecase(notificationRepo)
	adminUC := usecase.NewAdminUsecase(txm, adminRepo, canteenRepo, studentRepo, reportRepo, auditRepo, clock, cfg.Location)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.AdminEmail != "" {
		created, err := authUC.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			log.WithError(err).Fatal("failed to seed admin")
		}
		if created {
			log.WithField("email", cfg.AdminEmail).Info("admin account created")
		}
	}

	//営業時間スケジューラ
	sched := scheduler.New(canteenRepo, clock, cfg.Location, cfg.SchedulerInterval, log)
	sched.Start(ctx)
	defer sched.Stop()

	//Handler生成
	srv := server.New(cfg, log)
	server.RegisterRoutes(srv.Echo, cfg, canteenRepo, server.Handlers{
		Auth:          handler.NewAuthHandler(authUC),
		Orders:        handler.NewOrderHandler(orderUC),
		Canteen:       handler.NewCanteenHandler(canteenUC, orderUC, verifyUC),
		Menu:          handler.NewMenuHandler(menuUC),
		Notifications: handler.NewNotificationHandler(notificationUC),
		Admin:         handler.NewAdminHandler(adminUC, cfg.Location),
	})

	//Server起動
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("http server stopped")
		}
	}

	if err := srv.Shutdown(shutdownTimeout); err != nil {
		log.WithError(err).Error("failed to shutdown http server")
	}
}

// AMQP_URLがあればRabbitMQ、なければログに出すだけ
func newPublisher(cfg config.Config, log *logrus.Logger) closablePublisher {
	if cfg.AMQPURL == "" {
		return messaging.NewLogPublisher(log)
	}
	p, err := messaging.NewAMQPPublisher(cfg.AMQPURL, log)
	if err != nil {
		log.WithError(err).Warn("amqp unavailable, falling back to log publisher")
		return messaging.NewLogPublisher(log)
	}
	return p
}
