package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/mgmeyers/pdfmarks/marking"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func endIfErr(e error) {
	if e != nil {
		eLog := log.New(os.Stderr, "", 0)
		eLog.Fatalln(e)
	}
}

func logOutput(v interface{}) {
	out, err := json.Marshal(v)

	endIfErr(err)

	oLog := log.New(os.Stdout, "", 0)
	oLog.Println(string(out))
}

func (g *Globals) logger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if g.LogJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	if level, err := logrus.ParseLevel(g.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	return logger
}

// markingConfig returns the default config with the settings file, if any,
// laid over it.
func (g *Globals) markingConfig() (marking.Config, error) {
	cfg := marking.DefaultConfig()

	if g.Settings == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(g.Settings)
	if err != nil {
		return cfg, err
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "settings %s", g.Settings)
	}

	return cfg, nil
}
