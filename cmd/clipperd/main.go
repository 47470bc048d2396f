package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"clipper/internal/config"
	"clipper/internal/daemon"
	"clipper/internal/logging"
	"clipper/internal/media/engine"
	"clipper/internal/pipeline"
	"clipper/internal/queue"
	"clipper/internal/services/scribe"
	"clipper/internal/workflow"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return
	}

	transcriber, err := scribe.New(cfg, logger)
	if err != nil {
		logger.Error("configure transcription client", logging.Error(err))
		return
	}

	eng := engine.New(cfg.FFmpeg.FFmpegBinary, cfg.FFmpeg.FFprobeBinary, cfg.FFmpeg.SegmentSeconds, logger)
	pipe := pipeline.New(cfg, eng, transcriber, logger)

	manager := workflow.NewManager(cfg, store, workflow.StageSet{
		Splitter: pipeline.NewSplitStage(pipe, eng.Available, logger),
		Segments: pipeline.NewSegmentStage(store, pipe, logger),
	}, logger)

	d, err := daemon.New(cfg, store, logger, manager, pipe)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("clipperd shutting down")
}
