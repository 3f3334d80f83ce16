package main

import (
	"os"
	"time"

	"github.com/lonng/tempo"
	"github.com/lonng/tempo/internal/log"
	"github.com/lonng/tempo/setup"
	"github.com/pingcap/errors"
	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()
	app.Name = "TempoDemo"
	app.Description = "Tempo named-timer scheduler demo"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "settings",
			Usage: "path to a YAML timer settings file",
			Value: "",
		},
		&cli.DurationFlag{
			Name:  "run",
			Usage: "how long the demo keeps running",
			Value: 30 * time.Second,
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug logging",
		},
	}
	app.Action = run
	if err := app.Run(os.Args); err != nil {
		log.Fatal("Startup demo failed.", err)
	}
}

func run(ctx *cli.Context) error {
	opts := []tempo.Option{}
	if ctx.Bool("debug") {
		opts = append(opts, tempo.WithDebugMode())
	}
	tempo.Start(opts...)
	defer tempo.Close()

	reg := setup.NewRegistry()
	if err := registerTimers(reg); err != nil {
		return errors.Annotate(err, "register timers")
	}

	settings := defaultSettings()
	if path := ctx.String("settings"); path != "" {
		loaded, err := setup.Load(path)
		if err != nil {
			return err
		}
		settings = loaded
	}
	setup.Apply(reg, settings)

	// 模拟一次用户活动
	go func() {
		time.Sleep(5 * time.Second)
		tempo.ResetInactivityTimers()
	}()

	time.Sleep(ctx.Duration("run"))
	return nil
}

// registerTimers 填充定时器登记表
func registerTimers(reg *setup.Registry) error {
	if err := reg.Register("save", func(interval, max int64) {
		tempo.AddTimer("save", func(t *tempo.Timer) bool {
			log.Info("Timer %q fired, elapsed=%d.", t.ID(), t.ElapsedSeconds())
			return true
		}, false, interval, max, false, nil)
	}); err != nil {
		return err
	}

	if err := reg.Register("intro", func(interval, max int64) {
		tempo.AddTimer("intro", func(t *tempo.Timer) bool {
			log.Info("Timer %q fired once, completing.", t.ID())
			return true
		}, true, interval, max, false, nil)
	}); err != nil {
		return err
	}

	return reg.Register("idle", func(interval, max int64) {
		tempo.AddTimer("idle", func(t *tempo.Timer) bool {
			log.Info("User has been idle, timer %q fired.", t.ID())
			return true
		}, false, interval, max, true, nil)
	})
}

// defaultSettings 未提供配置文件时的内置配置
func defaultSettings() []setup.Setting {
	introMax := int64(10)
	return []setup.Setting{
		{TimerName: "save", IntervalSeconds: 15},
		{TimerName: "intro", IntervalSeconds: 10, MaxSeconds: &introMax},
		{TimerName: "idle", IntervalSeconds: 20},
	}
}
