package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"covid-testing-server/internal/config"
	"covid-testing-server/internal/events"
	"covid-testing-server/internal/logger"
	"covid-testing-server/internal/models"
	"covid-testing-server/internal/routes"
	"covid-testing-server/internal/service/account"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "covid-testing-server",
		Short: "COVID-19 test request tracking server",
	}
	rootCmd.AddCommand(serveCmd(), migrateCmd(), createUserCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := openDB(cfg, migrate)
			if err != nil {
				return err
			}

			publisher, closePublisher, err := newPublisher(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer closePublisher()

			if cfg.Environment != "development" {
				gin.SetMode(gin.ReleaseMode)
			}
			router := gin.New()

			corsConfig := cors.DefaultConfig()
			corsConfig.AllowOrigins = []string{cfg.Origin}
			corsConfig.AllowCredentials = true
			corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
			corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
			router.Use(cors.New(corsConfig))

			routes.SetupRoutes(router, db, cfg, log, publisher)

			log.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Environment))
			return router.Run(":" + cfg.Port)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "run schema migrations before serving")
	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			if _, err := openDB(cfg, true); err != nil {
				return err
			}
			log.Info("migrations applied", zap.String("database", cfg.Database.Name))
			return nil
		},
	}
}

func createUserCmd() *cobra.Command {
	var in account.NewUser
	var role string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account, typically a tester, doctor or admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := openDB(cfg, false)
			if err != nil {
				return err
			}

			in.Role = models.Role(role)
			user, err := account.NewService(db).Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			log.Info("user created", zap.String("id", user.ID), zap.String("email", user.Email), zap.String("role", string(user.Role)))
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&role, "role", string(models.RoleTester), "USER, TESTER, DOCTOR or ADMIN")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "covid-testing-server")
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

func openDB(cfg *config.Config, migrate bool) (*gorm.DB, error) {
	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN, Migrate: migrate})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

// newPublisher connects to Redis when REDIS_ADDR is set and otherwise
// drops status events.
func newPublisher(ctx context.Context, cfg *config.Config, log *zap.Logger) (events.Publisher, func(), error) {
	if cfg.Redis.Addr == "" {
		log.Info("redis not configured, status events disabled")
		return events.NopPublisher{}, func() {}, nil
	}
	client, err := events.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, err
	}
	log.Info("publishing status events", zap.String("stream", cfg.Redis.StatusStream))
	return events.NewRedisStreamPublisher(client, cfg.Redis.StatusStream), func() { client.Close() }, nil
}
