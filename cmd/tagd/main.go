// Command tagd runs the tagged-topic index: it loads configuration,
// replays the external mutation log, and serves the line-delimited
// JSON transport. Bootstrap only — the index's invariants are tested
// against internal/index directly, not through this binary.
package main

import (
	"context"
	"errors"
	"flag"

	"tagd/etc"
	"tagd/internal/dispatch"
	"tagd/internal/eventlog"
	"tagd/internal/index"
	"tagd/internal/transport"
	"tagd/util"
)

func main() {
	configPath := flag.String("config", "tagd.yaml", "path to the YAML config file, relative to the binary")
	flag.Parse()

	cfg := etc.GetConfig(*configPath)

	ix := index.New(index.Config{
		MessageCutoff:    cfg.Index.MessageCutoff,
		TopicCutoff:      cfg.Index.TopicCutoff,
		InverseThreshold: cfg.Index.InverseThreshold,
		TopicEstimate:    cfg.Index.TopicEstimate,
		FlushInterval:    cfg.Index.FlushInterval(),
	})
	table := dispatch.Table{Index: ix}

	log, err := eventlog.Open(eventlog.Options{
		Addr:     cfg.EventLog.Addr,
		Password: cfg.EventLog.Password,
		DB:       cfg.EventLog.DB,
		Key:      cfg.EventLog.Key,
	})
	if err != nil {
		util.Log.Fatalf("eventlog: %v", err)
	}
	defer log.Close()

	n, err := log.Replay(table)
	switch {
	case errors.Is(err, eventlog.ErrEmpty):
		util.Log.Printf("eventlog: starting from an empty log")
	case err != nil:
		util.Log.Fatalf("eventlog: replay: %v", err)
	default:
		util.Log.Printf("eventlog: replayed %d mutations", n)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ix.Run(ctx)

	srv := &transport.Server{
		SocketPath: cfg.Server.SocketPath,
		Index:      ix,
		Table:      table,
		Workers:    cfg.Server.Workers,
	}
	util.Log.Printf("listening on %s", cfg.Server.SocketPath)
	if err := srv.ListenAndServe(); err != nil {
		util.Log.Fatalf("transport: %v", err)
	}
}
