package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// logConfig 控制日志级别与格式。
type logConfig struct {
	Level  string `long:"level" env:"LEVEL" default:"warn" choice:"trace" choice:"debug" choice:"info" choice:"warn" choice:"error" choice:"fatal" description:"日志级别"`
	Format string `long:"format" env:"FORMAT" default:"text" choice:"json" choice:"text" choice:"color" description:"日志格式"`
}

func initLog(cfg logConfig) error {
	switch cfg.Format {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "color":
		log.SetFormatter(&log.TextFormatter{ForceColors: true})
	default:
		log.SetFormatter(&log.TextFormatter{})
	}

	lvl, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("无法识别的日志级别 %q：%w", cfg.Level, err)
	}
	log.SetLevel(lvl)
	return nil
}
