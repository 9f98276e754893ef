package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/conceptlink/internal/app"
	"github.com/abhisek/conceptlink/internal/config"
	"github.com/abhisek/conceptlink/internal/content"
	"github.com/abhisek/conceptlink/internal/leads"
	"github.com/abhisek/conceptlink/internal/persist"
	"github.com/abhisek/conceptlink/internal/store"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command, modelPath string) error {
	model, err := content.LoadFile(modelPath)
	if err != nil {
		return err
	}
	gameCfg, err := appConfig.GameConfig()
	if err != nil {
		return err
	}

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	recorder, err := buildRecorder(cmd.Context(), appConfig, st.EventRepo())
	if err != nil {
		return err
	}
	defer closeRecorder(recorder)

	opts := app.Options{
		Model:      model,
		GameConfig: gameCfg,
		Results:    st.EventRepo(),
		Recorder:   recorder,
		Logger:     logger,
	}

	if appConfig.Leads.URL != "" {
		pub, err := leads.DialAMQP(appConfig.Leads.URL, appConfig.Leads.Queue, logger)
		if err != nil {
			logger.Warn("lead capture unavailable", zap.Error(err))
		} else {
			defer pub.Close()
			opts.Leads = pub
		}
	}

	return app.Run(opts)
}

// buildRecorder wires the store sink plus any configured remote sinks.
// A remote sink that cannot be reached is skipped with a warning.
func buildRecorder(ctx context.Context, cfg *config.Config, repo store.EventRepo) (*persist.Recorder, error) {
	sinks := []persist.Sink{persist.NewStoreSink(repo)}

	if dsn := cfg.Sinks.Postgres.DSN; dsn != "" {
		pg, err := persist.OpenPostgres(ctx, dsn)
		if err != nil {
			logger.Warn("postgres sink unavailable", zap.Error(err))
		} else {
			sinks = append(sinks, pg)
		}
	}

	if m := cfg.Sinks.MQTT; m.Broker != "" {
		if m.QoS < 0 || m.QoS > 2 {
			return nil, fmt.Errorf("sinks.mqtt.qos must be 0, 1 or 2, got %d", m.QoS)
		}
		sink, err := persist.DialMQTT(persist.MQTTOptions{
			Broker:      m.Broker,
			ClientID:    m.ClientID,
			TopicPrefix: m.TopicPrefix,
			QoS:         byte(m.QoS),
			Username:    m.Username,
			Password:    m.Password,
		})
		if err != nil {
			logger.Warn("mqtt sink unavailable", zap.Error(err))
		} else {
			sinks = append(sinks, sink)
		}
	}

	return persist.NewRecorder(logger, persist.Options{
		QueueSize:    cfg.Sinks.QueueSize,
		WriteTimeout: cfg.Sinks.WriteTimeout,
	}, sinks...), nil
}

// closeRecorder flushes queued records, giving up after a few write timeouts.
func closeRecorder(r *persist.Recorder) {
	timeout := 3 * persist.DefaultWriteTimeout
	if appConfig != nil && appConfig.Sinks.WriteTimeout > 0 {
		timeout = 3 * appConfig.Sinks.WriteTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := r.Close(ctx); err != nil {
		logger.Warn("failed to flush session records", zap.Error(err))
	}
	stats := r.Stats()
	logger.Debug("recorder closed",
		zap.Int64("written", stats.Written),
		zap.Int64("dropped", stats.Dropped),
		zap.Int64("failed", stats.Failed))
}
