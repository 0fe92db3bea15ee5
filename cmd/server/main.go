package main

import (
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/a6cars/rental-api/internal/config"
    "github.com/a6cars/rental-api/internal/database"
    "github.com/a6cars/rental-api/internal/handler"
    "github.com/a6cars/rental-api/internal/middleware"
    "github.com/a6cars/rental-api/internal/queue"
    "github.com/a6cars/rental-api/internal/repository"
    "github.com/a6cars/rental-api/internal/router"
)

func main() {
    // .env is optional; in production configuration comes from the
    // environment directly.
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    rdb := config.NewRedisClient()

    customers := repository.NewCustomerRepo(db)
    tokens := repository.NewTokenRepo(db)
    vehicles := repository.NewVehicleRepo(db)
    reservations := repository.NewReservationRepo(db)
    payments := repository.NewPaymentRepo(db)

    authH := handler.NewAuthHandler(cfg, customers, tokens)
    vehicleH := handler.NewVehicleHandler(vehicles)
    reservationH := handler.NewReservationHandler(cfg, vehicles, reservations, payments)
    operatorH := handler.NewOperatorHandler(cfg, reservations, payments)

    e := echo.New()
    e.HideBanner = true
    e.Use(echomw.Recover())
    e.Use(echomw.Logger())

    router.RegisterRoutes(e)
    router.RegisterAuth(e, authH, cfg.JWTSecret)
    router.RegisterCatalog(e, vehicleH,
        middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
        middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
    )
    router.RegisterCustomer(e, reservationH, cfg.JWTSecret)
    router.RegisterOperator(e, operatorH, vehicleH, cfg.JWTSecret)

    // Lifecycle events are logged out-of-band so a broker outage never
    // blocks a booking.
    go func() {
        if err := queue.StartRentalConsumer(); err != nil {
            log.Printf("rental consumer stopped: %v", err)
        }
    }()

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
