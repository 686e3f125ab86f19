package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/urfave/cli"

	"github.com/jun-zaga/RobotWebControl/domain/robot"
	"github.com/jun-zaga/RobotWebControl/pkg/api"
	"github.com/jun-zaga/RobotWebControl/pkg/clock"
	"github.com/jun-zaga/RobotWebControl/pkg/config"
	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
	"github.com/jun-zaga/RobotWebControl/pkg/mqtt"
	"github.com/jun-zaga/RobotWebControl/pkg/zeromq"
)

func main() {
	app := cli.NewApp()
	app.Name = "robotd"
	app.Usage = "apply drive, servo and voice commands on the robot"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Value: "config/robotd.yaml",
			Usage: "path to the robot daemon configuration file",
		},
	}
	app.Action = serve
	app.Commands = []cli.Command{
		{
			Name:  "tap",
			Usage: "print actuator commands published by a running robotd",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "address",
					Value: "tcp://localhost:5591",
					Usage: "actuator publisher to subscribe to",
				},
				cli.StringFlag{
					Name:  "topic",
					Usage: "topic prefix filter, e.g. actuator.drive",
				},
			},
			Action: tap,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("robotd: %v", err)
	}
}

func serve(c *cli.Context) error {
	cfg, err := config.LoadRobotConfig(c.String("config"))
	if err != nil {
		return err
	}

	appLogger, err := customlog.NewLogrusLogger("robotd", cfg.Logging.Level, cfg.Logging.LogPath)
	if err != nil {
		return err
	}

	sinks, err := buildSinks(cfg, appLogger)
	if err != nil {
		return err
	}
	actuators := robot.NewFanout(appLogger, sinks...)

	service := robot.NewService(actuators, robot.ServiceOptions{
		Phrases:         cfg.Phrases,
		WatchdogTimeout: cfg.Watchdog.Timeout(),
		WatchdogPeriod:  cfg.Watchdog.Period(),
		Clock:           clock.Real(),
	}, appLogger)
	if err := service.Start(); err != nil {
		actuators.Close()
		return err
	}

	app := fiber.New(api.FiberConfig("Robot Web Control Daemon", appLogger))
	app.Use(logger.New())
	app.Use(recover.New())
	api.RegisterRobotRoutes(app, service, appLogger)

	go func() {
		addr := cfg.Server.Address()
		appLogger.Infof("Robot daemon listening on %s", addr)
		if err := app.Listen(addr); err != nil {
			appLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Infof("Shutting down robot daemon...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Errorf("Server forced to shutdown: %v", err)
	}

	if err := service.Shutdown(); err != nil {
		appLogger.Errorf("Final stop failed: %v", err)
	}
	if err := actuators.Close(); err != nil {
		appLogger.Errorf("Closing actuators: %v", err)
	}
	appLogger.Infof("Robot daemon exited properly")
	return nil
}

// buildSinks opens every enabled actuator output. Sinks already opened are
// closed again if a later one fails.
func buildSinks(cfg *config.RobotConfig, appLogger customlog.Logger) ([]robot.Sink, error) {
	var sinks []robot.Sink
	fail := func(err error) ([]robot.Sink, error) {
		for _, s := range sinks {
			s.Close()
		}
		return nil, err
	}

	if cfg.Actuators.Log {
		sinks = append(sinks, robot.NewLogSink(appLogger.WithField("sink", "log")))
	}
	if cfg.Actuators.ZeroMQ.Enabled {
		zmqLogger := appLogger.WithField("sink", "zeromq")
		publisher, err := zeromq.NewPublisher(nil, cfg.Actuators.ZeroMQ.PublishBindAddress, zmqLogger)
		if err != nil {
			return fail(err)
		}
		sinks = append(sinks, zeromq.NewActuatorSink(publisher, zmqLogger))
	}
	if cfg.Actuators.MQTT.Enabled {
		mqttLogger := appLogger.WithField("sink", "mqtt")
		sink, err := mqtt.Connect(mqtt.Options{
			Broker:      cfg.Actuators.MQTT.Broker,
			ClientID:    cfg.Actuators.MQTT.ClientID,
			TopicPrefix: cfg.Actuators.MQTT.TopicPrefix,
			QoS:         byte(cfg.Actuators.MQTT.QoS),
		}, mqttLogger)
		if err != nil {
			return fail(err)
		}
		// The broker only mirrors commands; it must never fail one.
		sinks = append(sinks, robot.Mirror(sink, mqttLogger))
	}
	if len(sinks) == 0 {
		appLogger.Warnf("No actuator outputs enabled, commands will be validated and dropped")
	}
	return sinks, nil
}

// tap subscribes to the actuator publisher and logs every decoded command.
func tap(c *cli.Context) error {
	appLogger, err := customlog.NewLogrusLogger("robotd-tap", "info", "")
	if err != nil {
		return err
	}

	listener, err := zeromq.NewListener(nil, c.String("address"), c.String("topic"),
		func(topic string, cmd robot.Command) {
			appLogger.Infof("#%d %s %s", cmd.Seq, topic, robot.FormatCommand(cmd))
		}, appLogger)
	if err != nil {
		return err
	}
	listener.Start()
	appLogger.Infof("Tapping actuator commands on %s", c.String("address"))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	listener.Stop()
	return nil
}
