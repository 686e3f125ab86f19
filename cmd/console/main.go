package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/urfave/cli"

	"github.com/jun-zaga/RobotWebControl/pkg/api"
	"github.com/jun-zaga/RobotWebControl/pkg/clock"
	"github.com/jun-zaga/RobotWebControl/pkg/config"
	"github.com/jun-zaga/RobotWebControl/pkg/dispatch"
	"github.com/jun-zaga/RobotWebControl/pkg/gamepad"
	"github.com/jun-zaga/RobotWebControl/pkg/joystick"
	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
	"github.com/jun-zaga/RobotWebControl/pkg/transport"
	"github.com/jun-zaga/RobotWebControl/services"
	"github.com/jun-zaga/RobotWebControl/web"
)

func main() {
	app := cli.NewApp()
	app.Name = "console"
	app.Usage = "serve the robot control page and relay its commands to the robot daemon"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Value: "config/console.yaml",
			Usage: "path to the console configuration file",
		},
		cli.StringFlag{
			Name:  "robot",
			Usage: "robot daemon base URL, overrides robot.base_url",
		},
		cli.BoolFlag{
			Name:  "mock",
			Usage: "log robot requests instead of sending them",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("console: %v", err)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.LoadConsoleConfig(c.String("config"), func(cfg *config.ConsoleConfig) {
		if u := c.String("robot"); u != "" {
			cfg.Robot.BaseURL = u
		}
		if c.Bool("mock") {
			cfg.Robot.Mock = true
		}
	})
	if err != nil {
		return err
	}

	appLogger, err := customlog.NewLogrusLogger("console", cfg.Logging.Level, cfg.Logging.LogPath)
	if err != nil {
		return err
	}

	var live transport.Transport
	if cfg.Robot.Mock {
		appLogger.Infof("Robot link in mock mode, requests are logged only")
		live = transport.NewMockTransport(appLogger.WithField("transport", "mock"))
	} else {
		appLogger.Infof("Robot link: %s (timeout %s)", cfg.Robot.BaseURL, cfg.Robot.RequestTimeout())
		live = transport.NewHTTPTransport(cfg.Robot.BaseURL, cfg.Robot.RequestTimeout(), appLogger.WithField("transport", "http"))
	}

	liveDirector := dispatch.NewDirector(live, appLogger.WithField("director", "live"), &dispatch.DirectorOptions{
		HighWorkers:     cfg.Dispatch.HighPriorityWorkers,
		StandardWorkers: cfg.Dispatch.StandardPriorityWorkers,
		QueueSize:       cfg.Dispatch.QueueSize,
	})
	mockDirector := dispatch.NewDirector(transport.NewMockTransport(appLogger.WithField("transport", "mock")),
		appLogger.WithField("director", "mock"), nil)
	liveDirector.Start()
	mockDirector.Start()

	settings, err := services.NewJoystickConfigService(cfg, appLogger)
	if err != nil {
		return err
	}
	hub := api.NewHub(settings, liveDirector, mockDirector, clock.Real(), cfg.Panel.Debounce(), appLogger)

	app := fiber.New(api.FiberConfig("Robot Web Control Console", appLogger))
	app.Use(logger.New())
	app.Use(recover.New())

	api.RegisterConsoleRoutes(app, settings, hub, liveDirector, appLogger)
	app.Use("/", filesystem.New(filesystem.Config{
		Root:  web.FileSystem(),
		Index: "index.html",
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var pad *joystick.Controller
	if cfg.Gamepad.Enabled {
		pad = startGamepad(ctx, cfg, settings, liveDirector, appLogger)
	}

	go func() {
		addr := cfg.Server.Address()
		appLogger.Infof("Console listening on %s", addr)
		if err := app.Listen(addr); err != nil {
			appLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Infof("Shutting down console...")

	// Every page and the gamepad get their stop out before the pools drain.
	hub.CloseAll()
	cancel()
	if pad != nil {
		pad.Teardown()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Errorf("Server forced to shutdown: %v", err)
	}

	liveDirector.Stop()
	mockDirector.Stop()
	appLogger.Infof("Console exited properly")
	return nil
}

// startGamepad drives the live robot from a physical gamepad. A missing
// device is logged and the console carries on without it.
func startGamepad(ctx context.Context, cfg *config.ConsoleConfig, settings services.JoystickConfigService, sender joystick.Sender, appLogger customlog.Logger) *joystick.Controller {
	padLogger := appLogger.WithField("source", "gamepad")
	controller := joystick.NewController(settings.ControllerOptions(), sender, clock.Real(), padLogger)

	source, closeDevice, err := gamepad.Open(gamepad.Options{
		Index:         cfg.Gamepad.Index,
		DeadmanButton: cfg.Gamepad.DeadmanButton,
		PollHz:        cfg.Gamepad.PollHz,
	}, controller, padLogger)
	if err != nil {
		padLogger.Warnf("Gamepad disabled: %v", err)
		return nil
	}

	go func() {
		defer closeDevice()
		if err := source.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			padLogger.Errorf("Gamepad stopped: %v", err)
		}
	}()
	return controller
}
