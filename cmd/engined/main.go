package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"falcon/domain/book"
	"falcon/infra/config"
	"falcon/infra/kafka"
	"falcon/infra/outbox"
	"falcon/infra/sequence"
	"falcon/infra/wal"
	"falcon/jobs/broadcaster"
	"falcon/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := newLogger(cfg.App)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// ---------------- WAL ----------------

	w, err := wal.Open(wal.Config{
		Dir:         cfg.WAL.Dir,
		SegmentSize: cfg.WAL.SegmentSize,
	})
	if err != nil {
		log.Fatal("wal open", zap.Error(err))
	}
	defer w.Close()

	// ---------------- Outbox ----------------

	ob, err := outbox.Open(cfg.Outbox.Dir)
	if err != nil {
		log.Fatal("outbox open", zap.Error(err))
	}
	defer ob.Close()

	// ---------------- Domain + replay ----------------

	b := book.New()
	seqGen := sequence.New(0)

	if err := service.Replay(cfg.Snapshot.Dir, cfg.WAL.Dir, b, seqGen, log); err != nil {
		log.Fatal("replay", zap.Error(err))
	}

	svc := service.NewBookService(b, w, ob, seqGen, log)

	// ---------------- Background jobs ----------------

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go svc.StartSnapshotJob(ctx, cfg.Snapshot.Dir, cfg.Snapshot.Interval)

	bc, err := broadcaster.New(ob, cfg.Egress.Brokers, cfg.Egress.Topic, cfg.Egress.Interval, log)
	if err != nil {
		log.Fatal("broadcaster init", zap.Error(err))
	}
	defer bc.Close()
	go bc.Run(ctx)

	// ---------------- Ingress ----------------

	consumer := kafka.NewConsumer(
		cfg.Ingress.Brokers,
		cfg.Ingress.Topic,
		cfg.Ingress.GroupID,
		svc,
		log,
	)
	defer consumer.Close()

	log.Info("engine running",
		zap.String("ingress_topic", cfg.Ingress.Topic),
		zap.String("egress_topic", cfg.Egress.Topic),
	)

	if err := consumer.Run(ctx); err != nil {
		log.Fatal("consumer exited", zap.Error(err))
	}

	// Flush what the consumer left buffered before exiting.
	if err := svc.Sync(); err != nil {
		log.Error("final wal sync", zap.Error(err))
	}
	log.Info("engine stopped", zap.Uint64("last_seq", svc.LastSeq()))
}

func newLogger(app config.AppConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(app.LogLevel)
	if err != nil {
		return nil, err
	}

	var zcfg zap.Config
	if app.Environment == "development" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build(zap.Fields(zap.String("app", app.Name)))
}
